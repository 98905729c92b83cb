package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/avidev9/school-portal-api/internal/service"
	"github.com/avidev9/school-portal-api/pkg/formrelay"
)

type fakeRelay struct {
	configured bool
	submitted  map[string]string
}

func (f *fakeRelay) Configured() bool {
	return f.configured
}

func (f *fakeRelay) Submit(ctx context.Context, fields map[string]string) (*formrelay.Result, error) {
	f.submitted = fields
	return &formrelay.Result{Success: true}, nil
}

func TestContactHandlerSubmitAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	relay := &fakeRelay{configured: true}
	handler := NewContactHandler(service.NewContactService(relay, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"name":"Jordan","email":"jordan@example.com","subject":"Admissions","message":"When do admissions open?"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/public/contact", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Jordan", relay.submitted["name"])
}

func TestContactHandlerSubmitUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContactHandler(service.NewContactService(&fakeRelay{}, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"name":"Jordan","email":"jordan@example.com","subject":"Admissions","message":"Hello"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/public/contact", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var envelope map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	errBlock, _ := envelope["error"].(map[string]interface{})
	assert.Equal(t, "CONFIG_ABSENT", errBlock["code"])
}

func TestContactHandlerSubmitBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContactHandler(service.NewContactService(&fakeRelay{configured: true}, nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/public/contact", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
