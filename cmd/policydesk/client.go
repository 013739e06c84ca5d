// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// Constants for default connection settings
const (
	DefaultServicePort = 12310
	DefaultServiceHost = "localhost"
)

// apiClient is a thin wrapper over the enrollment service HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// newAPIClient reads POLICYDESK_URL and POLICYDESK_API_TOKEN. When the
// URL is unset it falls back to localhost on the default port.
func newAPIClient() *apiClient {
	base := os.Getenv("POLICYDESK_URL")
	if base == "" {
		base = fmt.Sprintf("http://%s:%d", DefaultServiceHost, DefaultServicePort)
	}
	return &apiClient{
		baseURL: base,
		token:   os.Getenv("POLICYDESK_API_TOKEN"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// do issues the request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses are turned into errors carrying the
// server's error message.
func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("server returned %s: %s", resp.Status, payload.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func (c *apiClient) queryRecords(q datatypes.Query) (datatypes.QueryResult, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.SortKey != "" {
		params.Set("sort", q.SortKey)
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	path := "/v1/records"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var result datatypes.QueryResult
	err := c.do(http.MethodGet, path, nil, &result)
	return result, err
}

func (c *apiClient) createRecord(rec datatypes.PolicyRecord) (datatypes.PolicyRecord, error) {
	var created datatypes.PolicyRecord
	err := c.do(http.MethodPost, "/v1/records", rec, &created)
	return created, err
}

func (c *apiClient) deleteRecord(id string) error {
	return c.do(http.MethodDelete, "/v1/records/"+url.PathEscape(id), nil, nil)
}

func (c *apiClient) importRecords(records []datatypes.PolicyRecord) (int, error) {
	var resp struct {
		Imported int `json:"imported"`
	}
	err := c.do(http.MethodPost, "/v1/records/import",
		datatypes.ImportRequest{Records: records}, &resp)
	return resp.Imported, err
}

// exportRecords downloads one export and returns the raw file bytes.
func (c *apiClient) exportRecords(format string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet,
		c.baseURL+"/v1/records/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *apiClient) partners() ([]string, error) {
	var resp struct {
		Partners []string `json:"partners"`
	}
	err := c.do(http.MethodGet, "/v1/catalog/partners", nil, &resp)
	return resp.Partners, err
}

func (c *apiClient) products(partner string) ([]string, error) {
	var resp struct {
		Products []string `json:"products"`
	}
	err := c.do(http.MethodGet,
		"/v1/catalog/partners/"+url.PathEscape(partner)+"/products", nil, &resp)
	return resp.Products, err
}

func (c *apiClient) premiums(partner, product string) ([]string, error) {
	var resp struct {
		Premiums []string `json:"premiums"`
	}
	err := c.do(http.MethodGet,
		"/v1/catalog/partners/"+url.PathEscape(partner)+
			"/products/"+url.PathEscape(product)+"/premiums", nil, &resp)
	return resp.Premiums, err
}

func (c *apiClient) resolve(partner, product, premium string) (tenure, cseName string, err error) {
	req := map[string]string{
		"partner": partner,
		"product": product,
		"premium": premium,
	}
	var resp struct {
		Tenure  string `json:"tenure"`
		CSEName string `json:"cse_name"`
	}
	err = c.do(http.MethodPost, "/v1/catalog/resolve", req, &resp)
	return resp.Tenure, resp.CSEName, err
}
