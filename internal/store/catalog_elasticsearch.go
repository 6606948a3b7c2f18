// internal/store/catalog_elasticsearch.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"college-fit-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultPageSize = 1000

// ElasticsearchCatalog reads the catalog from a search index, paging with
// search_after on the numeric id.
type ElasticsearchCatalog struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
}

func NewElasticsearchCatalog(client *elasticsearch.Client, index string, pageSize int) *ElasticsearchCatalog {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ElasticsearchCatalog{client: client, index: index, pageSize: pageSize}
}

type collegeDoc struct {
	ID                    json.Number    `json:"id"`
	Name                  string         `json:"name"`
	Country               string         `json:"country"`
	Location              string         `json:"location"`
	AcceptanceRate        *float64       `json:"acceptance_rate"`
	Programs              models.RawJSON `json:"programs"`
	Requirements          models.RawJSON `json:"requirements"`
	ResearchData          models.RawJSON `json:"research_data"`
	CostData              models.RawJSON `json:"cost_data"`
	TrustTier             string         `json:"trust_tier"`
	FinancialAidAvailable bool           `json:"financial_aid_available"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string        `json:"_id"`
			Source collegeDoc    `json:"_source"`
			Sort   []interface{} `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *ElasticsearchCatalog) ListColleges(ctx context.Context) ([]models.CollegeRecord, error) {
	var (
		out         []models.CollegeRecord
		searchAfter []interface{}
	)

	for {
		body := map[string]interface{}{
			"size":  c.pageSize,
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
		}
		if searchAfter != nil {
			body["search_after"] = searchAfter
		}

		var resp searchResponse
		if err := c.search(ctx, body, &resp); err != nil {
			return nil, err
		}

		hits := resp.Hits.Hits
		for _, hit := range hits {
			out = append(out, hit.Source.toRecord(hit.ID))
		}
		if len(hits) < c.pageSize {
			break
		}
		searchAfter = hits[len(hits)-1].Sort
		if len(searchAfter) == 0 {
			break
		}
	}
	return out, nil
}

func (c *ElasticsearchCatalog) GetCollege(ctx context.Context, id int64) (*models.CollegeRecord, error) {
	req := esapi.GetRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(id, 10),
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("get college %d: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrCollegeNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get college %d: %s", id, res.String())
	}

	var doc struct {
		ID     string     `json:"_id"`
		Found  bool       `json:"found"`
		Source collegeDoc `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode college %d: %w", id, err)
	}
	if !doc.Found {
		return nil, ErrCollegeNotFound
	}
	record := doc.Source.toRecord(doc.ID)
	return &record, nil
}

func (c *ElasticsearchCatalog) search(ctx context.Context, body map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode catalog query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("search %s: %w", c.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search %s failed: %s", c.index, res.String())
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	return nil
}

// toRecord falls back to the document _id when the source has no numeric id.
func (d collegeDoc) toRecord(docID string) models.CollegeRecord {
	id, err := d.ID.Int64()
	if err != nil {
		id, _ = strconv.ParseInt(docID, 10, 64)
	}
	return models.CollegeRecord{
		ID:                    id,
		Name:                  d.Name,
		Country:               d.Country,
		Location:              d.Location,
		AcceptanceRate:        d.AcceptanceRate,
		Programs:              d.Programs,
		Requirements:          d.Requirements,
		ResearchData:          d.ResearchData,
		CostData:              d.CostData,
		TrustTier:             d.TrustTier,
		FinancialAidAvailable: d.FinancialAidAvailable,
	}
}
