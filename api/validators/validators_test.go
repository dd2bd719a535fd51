package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/khatmdev/quadramall-sub001/pkg/errors"
)

type quantityBody struct {
	Quantity int         `json:"quantity" validate:"gte=1"`
	AddonIDs []uuid.UUID `json:"addon_ids" validate:"omitempty,unique"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":3}`))
	var body quantityBody
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, 3, body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":3,"price":1}`))
	var body quantityBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldByJSONName(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":0,"addon_ids":["`+id.String()+`","`+id.String()+`"]}`))
	var body quantityBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be at least 1", details["quantity"])
	require.Equal(t, "must not contain duplicates", details["addon_ids"])
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("itemId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := ParseUUIDParam(withParam(id.String()), "itemId")
	require.NoError(t, err)
	require.Equal(t, id, got)

	for _, bad := range []string{"", "abc", uuid.Nil.String()} {
		_, err := ParseUUIDParam(withParam(bad), "itemId")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), bad)
	}
}
