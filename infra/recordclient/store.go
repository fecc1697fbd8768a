package recordclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kilianp07/lift/core/records"
)

// Store is one remote collection.
type Store struct {
	c   *Client
	col records.Collection
}

func (s *Store) path(id string) string {
	p := "/api/" + url.PathEscape(string(s.col))
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (s *Store) Create(ctx context.Context, in records.Input) (records.Record, error) {
	if err := in.Validate(); err != nil {
		return records.Record{}, err
	}
	var rec records.Record
	err := s.c.do(ctx, http.MethodPost, s.path(""), in, &rec)
	return rec, err
}

func (s *Store) List(ctx context.Context) ([]records.Record, error) {
	var recs []records.Record
	if err := s.c.do(ctx, http.MethodGet, s.path(""), nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) Get(ctx context.Context, id string) (records.Record, error) {
	var rec records.Record
	err := s.c.do(ctx, http.MethodGet, s.path(id), nil, &rec)
	return rec, err
}

func (s *Store) Update(ctx context.Context, id string, p records.Patch) (records.Record, error) {
	if err := p.Validate(); err != nil {
		return records.Record{}, err
	}
	var rec records.Record
	err := s.c.do(ctx, http.MethodPut, s.path(id), p, &rec)
	return rec, err
}

func (s *Store) Delete(ctx context.Context, id string) (records.Record, error) {
	var rec records.Record
	err := s.c.do(ctx, http.MethodDelete, s.path(id), nil, &rec)
	return rec, err
}

func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.c.do(ctx, http.MethodDelete, s.path(""), nil, &out)
	return out.Count, err
}

var _ records.Store = (*Store)(nil)
