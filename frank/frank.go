// Package frank fetches day-ahead energy prices from the Frank Energie
// GraphQL API. The market price feed is public and needs no
// authentication.
package frank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultUrl = "https://frank-graphql-prod.graphcdn.app/"

type queryRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type queryResponse struct {
	Data struct {
		MarketPricesElectricity []marketPrice `json:"marketPricesElectricity"`
		MarketPricesGas         []marketPrice `json:"marketPricesGas"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

type Frank struct {
	url    string
	client *http.Client
}

func New(url string) *Frank {
	if url == "" {
		url = DefaultUrl
	}
	return &Frank{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Frank) doQuery(ctx context.Context, request queryRequest) (*queryResponse, error) {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", f.url, bytes.NewBuffer(reqBody))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "status", StatusCode: res.StatusCode}
	}

	bytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}

	resBody := new(queryResponse)
	if err = json.Unmarshal(bytes, resBody); err != nil {
		return nil, &SchemaError{Reason: "malformed response body", Err: err}
	}

	if resBody.Errors != nil {
		messages := make([]string, len(resBody.Errors))
		for i, err := range resBody.Errors {
			messages[i] = err.Message
		}
		return nil, &SchemaError{Reason: fmt.Sprintf("graphql error: %s", strings.Join(messages, "; "))}
	}

	return resBody, nil
}
