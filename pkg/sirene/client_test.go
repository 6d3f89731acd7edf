package sirene

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const etabJSON = `{
	"header": {"statut": 200, "message": "OK"},
	"etablissement": {
		"siret": "55208131766522",
		"denominationUsuelleEtablissement": "",
		"uniteLegale": {"denominationUniteLegale": "ELECTRICITE DE FRANCE"},
		"adresseEtablissement": {
			"numeroVoieEtablissement": "22",
			"typeVoieEtablissement": "AV",
			"libelleVoieEtablissement": "DE WAGRAM",
			"codePostalEtablissement": "75008",
			"libelleCommuneEtablissement": "PARIS 8",
			"codeCommuneEtablissement": "75108"
		}
	}
}`

func TestEtablissement_Success(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-INSEE-Api-Key-Integration")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, etabJSON)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	etab, err := c.Etablissement(context.Background(), "55208131766522")
	require.NoError(t, err)

	assert.Equal(t, "/siret/55208131766522", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "55208131766522", etab.Siret)
	assert.Equal(t, "ELECTRICITE DE FRANCE", etab.DisplayName())
	assert.Equal(t, "75108", etab.Adresse.CodeCommune)
	assert.Equal(t, "22 AV DE WAGRAM, 75008 PARIS 8", etab.Adresse.OneLine())
}

func TestEtablissement_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"header":{"statut":404,"message":"Aucun élément trouvé"}}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Etablissement(context.Background(), "00000000000000")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Aucun élément trouvé")
}

func TestEtablissement_MissingRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"header":{"statut":200,"message":"OK"}}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Etablissement(context.Background(), "55208131766522")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no establishment")
}

func TestEtablissement_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"header":`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Etablissement(context.Background(), "55208131766522")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestEtablissement_ContextCanceled(t *testing.T) {
	c := NewClient("test-key", WithBaseURL("http://127.0.0.1:1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Etablissement(ctx, "55208131766522")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDisplayName_Fallback(t *testing.T) {
	etab := &Etablissement{Denomination: "CHEZ MARCEL"}
	assert.Equal(t, "CHEZ MARCEL", etab.DisplayName())

	etab.UniteLegale.Denomination = "MARCEL SAS"
	assert.Equal(t, "MARCEL SAS", etab.DisplayName())
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		name string
		addr Adresse
		want string
	}{
		{
			name: "full",
			addr: Adresse{
				NumeroVoie: "4", TypeVoie: "RUE", LibelleVoie: "DE LA PAIX",
				CodePostal: "75002", LibelleCommune: "PARIS 2",
			},
			want: "4 RUE DE LA PAIX, 75002 PARIS 2",
		},
		{
			name: "no street number",
			addr: Adresse{
				TypeVoie: "LIEU DIT", LibelleVoie: "LES GRANGES",
				CodePostal: "01300", LibelleCommune: "BENONCES",
			},
			want: "LIEU DIT LES GRANGES, 01300 BENONCES",
		},
		{
			name: "locality only",
			addr: Adresse{CodePostal: "20000", LibelleCommune: "AJACCIO"},
			want: "20000 AJACCIO",
		},
		{
			name: "street only",
			addr: Adresse{NumeroVoie: "8", TypeVoie: "BD", LibelleVoie: "VOLTAIRE"},
			want: "8 BD VOLTAIRE",
		},
		{
			name: "empty",
			addr: Adresse{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.OneLine())
		})
	}
}

func TestSnippet_Truncates(t *testing.T) {
	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'x'
	}
	s := snippet(long)
	assert.Len(t, s, 515)
	assert.True(t, len(s) < len(long))
}
