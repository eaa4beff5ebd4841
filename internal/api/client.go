// Package api is the typed BOQ API client. It normalizes the backend's two
// list envelope shapes (records vs items) into one, and adapts each catalog
// resource to the controller interfaces in internal/resource.
package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"boqtrack/internal/boq"
	"boqtrack/internal/resource"
	"boqtrack/internal/session"
	"boqtrack/internal/transport"
)

// Record is an opaque resource payload. The controllers never interpret it
// beyond the schema-declared fields.
type Record = map[string]any

// Client talks to the BOQ backend.
type Client struct {
	t        *transport.Client
	sessions *session.Store
}

func NewClient(t *transport.Client, sessions *session.Store) *Client {
	return &Client{t: t, sessions: sessions}
}

// listEnvelope tolerates both envelope namings used across the backend's
// collections.
type listEnvelope struct {
	Records []Record `json:"records"`
	Items   []Record `json:"items"`
	Total   int      `json:"total"`
}

// List fetches one page of res matching q.
func (c *Client) List(ctx context.Context, res boq.Resource, q resource.Query) (resource.Result[Record], error) {
	q = q.Normalize()
	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip()))
	params.Set("limit", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	for k, v := range q.Filters {
		params.Set(k, v)
	}

	var env listEnvelope
	if err := c.t.GetJSON(ctx, res.Path, params, &env); err != nil {
		return resource.Result[Record]{}, err
	}
	records := env.Records
	if records == nil {
		records = env.Items
	}
	if records == nil {
		records = []Record{}
	}
	return resource.Result[Record]{Records: records, Total: env.Total}, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, res boq.Resource, id string) (Record, error) {
	var rec Record
	if err := c.t.GetJSON(ctx, res.ItemPath(id), nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a record and returns the server's copy.
func (c *Client) Create(ctx context.Context, res boq.Resource, rec Record) (Record, error) {
	var created Record
	if err := c.t.PostJSON(ctx, res.Path, rec, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a record and returns the server's copy.
func (c *Client) Update(ctx context.Context, res boq.Resource, id string, rec Record) (Record, error) {
	var updated Record
	if err := c.t.PutJSON(ctx, res.ItemPath(id), rec, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, res boq.Resource, id string) error {
	return c.t.Delete(ctx, res.ItemPath(id))
}

// ImportResult is the outcome of a CSV ingestion.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

// UploadCSV streams a CSV file to the resource's upload endpoint.
func (c *Client) UploadCSV(ctx context.Context, res boq.Resource, filename string, r io.Reader) (ImportResult, error) {
	var out ImportResult
	if err := c.t.PostFile(ctx, res.UploadPath(), filename, r, &out); err != nil {
		return ImportResult{}, err
	}
	return out, nil
}

// Login exchanges credentials for a session and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	if username == "" || password == "" {
		return session.Session{}, fmt.Errorf("username and password are required")
	}
	var resp struct {
		Token string          `json:"token"`
		User  session.Profile `json:"user"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.t.PostJSON(ctx, "/auth/login", payload, &resp); err != nil {
		return session.Session{}, err
	}
	sess := session.Session{Token: resp.Token, User: resp.User}
	if err := c.sessions.Save(sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Logout clears the stored session.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// ListerFor adapts res to the list controller's Lister interface.
func (c *Client) ListerFor(res boq.Resource) resource.Lister[Record] {
	return resource.ListerFunc[Record](func(ctx context.Context, q resource.Query) (resource.Result[Record], error) {
		return c.List(ctx, res, q)
	})
}

// SubmitterFor adapts res to the form controller's Submitter interface.
func (c *Client) SubmitterFor(res boq.Resource) resource.Submitter {
	return &resourceSubmitter{c: c, res: res}
}

// DeleterFor adapts res to the delete flow's Deleter interface.
func (c *Client) DeleterFor(res boq.Resource) resource.Deleter {
	return &resourceDeleter{c: c, res: res}
}

type resourceSubmitter struct {
	c   *Client
	res boq.Resource
}

func (s *resourceSubmitter) Create(ctx context.Context, rec map[string]any) error {
	_, err := s.c.Create(ctx, s.res, rec)
	return err
}

func (s *resourceSubmitter) Update(ctx context.Context, id string, rec map[string]any) error {
	_, err := s.c.Update(ctx, s.res, id, rec)
	return err
}

type resourceDeleter struct {
	c   *Client
	res boq.Resource
}

func (d *resourceDeleter) Delete(ctx context.Context, id string) error {
	return d.c.Delete(ctx, d.res, id)
}
