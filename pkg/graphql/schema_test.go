package graphql_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gql "github.com/shashiranjanraj/ayoo/pkg/graphql"
)

func schema(t *testing.T) graphql.Schema {
	t.Helper()
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"status": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.String}},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "PENDING:" + p.Args["id"].(string), nil
				},
			},
		},
	})
	s, err := gql.NewSchema(query, nil)
	require.NoError(t, err)
	return s
}

func TestHandlerExecutesQuery(t *testing.T) {
	h := gql.Handler(schema(t))

	body := `{"query":"query($id:String){ status(id:$id) }","variables":{"id":"o-1"}}`
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"status":"PENDING:o-1"}}`, w.Body.String())
}

func TestHandlerRejectsBadBody(t *testing.T) {
	h := gql.Handler(schema(t))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/graphql", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
