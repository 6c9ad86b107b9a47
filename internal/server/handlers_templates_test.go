package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karkeeg/productforge/internal/db"
)

func TestListTemplates(t *testing.T) {
	store := newFakeStore()
	store.templates = []db.Template{
		{ID: uuid.New(), Name: "Course Launch", Category: "course", UsageCount: 12},
		{ID: uuid.New(), Name: "Coaching Program", Category: "coaching", UsageCount: 7},
	}
	s := newTestServer(store, &fakeRunner{}, newFakeUserStore())

	req := authedRequest(http.MethodGet, "/templates", "", uuid.New())
	rec := httptest.NewRecorder()
	s.handleListTemplates(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Templates []db.Template `json:"templates"`
		Count     int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestListTemplatesByCategory(t *testing.T) {
	store := newFakeStore()
	store.templates = []db.Template{
		{ID: uuid.New(), Name: "Course Launch", Category: "course"},
		{ID: uuid.New(), Name: "Coaching Program", Category: "coaching"},
	}
	s := newTestServer(store, &fakeRunner{}, newFakeUserStore())

	req := authedRequest(http.MethodGet, "/templates?category=coaching", "", uuid.New())
	rec := httptest.NewRecorder()
	s.handleListTemplates(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Templates []db.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Templates, 1)
	assert.Equal(t, "Coaching Program", resp.Templates[0].Name)
}

func TestUseTemplate(t *testing.T) {
	store := newFakeStore()
	tmpl := db.Template{ID: uuid.New(), Name: "Course Launch", Category: "course", UsageCount: 3}
	store.templates = []db.Template{tmpl}
	s := newTestServer(store, &fakeRunner{}, newFakeUserStore())

	req := authedRequest(http.MethodPost, "/templates/"+tmpl.ID.String()+"/use", "", uuid.New())
	req.SetPathValue("id", tmpl.ID.String())
	rec := httptest.NewRecorder()
	s.handleUseTemplate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success    bool `json:"success"`
		UsageCount int  `json:"usageCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.UsageCount)
}

func TestUseTemplateNotFound(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRunner{}, newFakeUserStore())

	id := uuid.New()
	req := authedRequest(http.MethodPost, "/templates/"+id.String()+"/use", "", uuid.New())
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	s.handleUseTemplate(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
