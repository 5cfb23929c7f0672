package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-records/internal/domain/entity"
	"github.com/oksasatya/user-records/pkg/apperror"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type userDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) searchEnabled() bool {
	return s.ES != nil && s.ESUsersIndex != ""
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if !s.searchEnabled() {
		return nil
	}
	b, err := json.Marshal(userDocument{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) unindexUser(ctx context.Context, id string) error {
	if !s.searchEnabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", id).Warn("es delete response error")
	}
	return nil
}

// Search runs a multi_match query over email and name. It returns an
// empty result when no search index is configured.
func (s *Service) Search(ctx context.Context, q string, size int) ([]entity.User, error) {
	if !s.searchEnabled() {
		return []entity.User{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, s.storeError("failed to search users", "", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, s.storeError("failed to search users", "", fmt.Errorf("search: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string       `json:"_id"`
				Source userDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperror.Infrastructure("failed to decode search response", err)
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id := h.Source.ID
		if id == "" {
			id = h.ID
		}
		out = append(out, entity.User{
			ID:        id,
			Name:      h.Source.Name,
			Email:     h.Source.Email,
			ImageURL:  h.Source.ImageURL,
			CreatedAt: h.Source.CreatedAt,
			UpdatedAt: h.Source.UpdatedAt,
		})
	}
	return out, nil
}
