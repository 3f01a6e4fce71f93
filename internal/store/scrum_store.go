package store

import (
	"context"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

// scrumRecord はscrumsコレクションのワイヤ表現。
type scrumRecord struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (r scrumRecord) toModel() model.Scrum {
	return model.Scrum{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

// HTTPScrumStore はリソースストアのscrumsコレクションへのHTTPクライアント。
type HTTPScrumStore struct {
	client *Client
}

// NewHTTPScrumStore はHTTPScrumStoreを生成する。
func NewHTTPScrumStore(client *Client) *HTTPScrumStore {
	return &HTTPScrumStore{client: client}
}

// List は全スクラムを返す。
func (s *HTTPScrumStore) List(ctx context.Context) ([]model.Scrum, error) {
	var records []scrumRecord
	if err := s.client.list(ctx, "scrums", nil, &records); err != nil {
		return nil, err
	}
	scrums := make([]model.Scrum, len(records))
	for i, r := range records {
		scrums[i] = r.toModel()
	}
	return scrums, nil
}

// Get は指定IDのスクラムを取得する。存在しない場合はErrNotFoundを返す。
func (s *HTTPScrumStore) Get(ctx context.Context, id string) (*model.Scrum, error) {
	var record scrumRecord
	if err := s.client.get(ctx, "scrums", id, &record); err != nil {
		return nil, err
	}
	scrum := record.toModel()
	return &scrum, nil
}

// Create はスクラムを作成し、ストアが採番したIDを含むレコードを返す。
func (s *HTTPScrumStore) Create(ctx context.Context, scrum model.Scrum) (*model.Scrum, error) {
	body := scrumRecord{Name: scrum.Name}

	var record scrumRecord
	if err := s.client.create(ctx, "scrums", body, &record); err != nil {
		return nil, err
	}
	created := record.toModel()
	return &created, nil
}

// compile-time interface check
var _ ScrumStore = (*HTTPScrumStore)(nil)
