// internal/search/index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/models"
)

var ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")

const indexMapping = `{
	"mappings": {
		"properties": {
			"id":          {"type": "keyword"},
			"name":        {"type": "text"},
			"description": {"type": "text"}
		}
	}
}`

type indexedProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source indexedProduct `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// ProductIndex keeps a searchable copy of the catalog and resolves loose product names against it.
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewProductIndex(client *elasticsearch.Client, index string, log logger.Logger) *ProductIndex {
	return &ProductIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "product_index", "index": index}),
	}
}

// MatchProduct returns the id of the best fuzzy match for name.
func (p *ProductIndex) MatchProduct(ctx context.Context, name string) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, nil
	}

	body, _ := json.Marshal(buildMatchQuery(name))
	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return "", false, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", false, apperrors.NewSearchQueryFailedError(fmt.Errorf("%w: %s", ErrIndexNotFound, p.index))
	}
	if res.IsError() {
		return "", false, apperrors.NewSearchQueryFailedError(fmt.Errorf("search query failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", false, apperrors.NewSearchQueryFailedError(err)
	}
	if len(r.Hits.Hits) == 0 {
		return "", false, nil
	}

	hit := r.Hits.Hits[0]
	id := hit.Source.ID
	if id == "" {
		id = hit.ID
	}
	p.logger.Debug("Product name matched", map[string]interface{}{
		"query":     name,
		"productId": id,
		"score":     hit.Score,
	})
	return id, true, nil
}

// buildMatchQuery ranks the name above the description and tolerates typos.
func buildMatchQuery(name string) map[string]interface{} {
	return map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     name,
				"fields":    []string{"name^3", "description"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
	}
}

// Sync rebuilds the index from products. The index is dropped and recreated so removed products disappear.
func (p *ProductIndex) Sync(ctx context.Context, products []models.Product) error {
	del, err := p.client.Indices.Delete(
		[]string{p.index},
		p.client.Indices.Delete.WithContext(ctx),
		p.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	del.Body.Close()
	if del.IsError() && del.StatusCode != http.StatusNotFound {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("delete index: %s", del.Status()))
	}

	create, err := p.client.Indices.Create(
		p.index,
		p.client.Indices.Create.WithContext(ctx),
		p.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	create.Body.Close()
	if create.IsError() {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("create index: %s", create.Status()))
	}

	if len(products) == 0 {
		p.logger.Info("Product index cleared", nil)
		return nil
	}

	res, err := p.client.Bulk(
		bytes.NewReader(bulkBody(products)),
		p.client.Bulk.WithContext(ctx),
		p.client.Bulk.WithIndex(p.index),
		p.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if err := checkBulk(res); err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}

	p.logger.Info("Product index synced", map[string]interface{}{"documents": len(products)})
	return nil
}

func bulkBody(products []models.Product) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, prod := range products {
		_ = enc.Encode(map[string]interface{}{"index": map[string]interface{}{"_id": prod.ID}})
		_ = enc.Encode(indexedProduct{ID: prod.ID, Name: prod.Name, Description: prod.Description})
	}
	return buf.Bytes()
}

func checkBulk(res *esapi.Response) error {
	if res.IsError() {
		return fmt.Errorf("bulk index failed: %s", res.String())
	}
	var r bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return err
	}
	if !r.Errors {
		return nil
	}
	for _, item := range r.Items {
		for _, result := range item {
			if result.Error != nil {
				return fmt.Errorf("bulk item failed: %s: %s", result.Error.Type, result.Error.Reason)
			}
		}
	}
	return errors.New("bulk index reported errors")
}
