package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransliterate(t *testing.T) {
	assert.Equal(t, "limonady", Transliterate("Лимонады"))
	assert.Equal(t, "energetiki", Transliterate("Энергетики"))
	// 対応外の文字はそのまま
	assert.Equal(t, "cola zero", Transliterate("cola zero"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "energy-drinks", Slugify("Energy Drinks!"))
	assert.Equal(t, "cola-0-5", Slugify("  Cola   0.5  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestLocalTranslator_ToSlug(t *testing.T) {
	slug, err := LocalTranslator{}.ToSlug(context.Background(), "Энергетики")
	assert.NoError(t, err)
	assert.Equal(t, "energetiki", slug)
}

func TestHTTPTranslator_ToSlug_UsesAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "Энергетики", r.PostForm.Get("q"))
		assert.Equal(t, "en", r.PostForm.Get("target"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"Energy Drinks"}`))
	}))
	defer srv.Close()

	slug, err := NewHTTPTranslator(srv.URL).ToSlug(context.Background(), "Энергетики")

	assert.NoError(t, err)
	assert.Equal(t, "energy-drinks", slug)
}

func TestHTTPTranslator_ToSlug_FallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	slug, err := NewHTTPTranslator(srv.URL).ToSlug(context.Background(), "Энергетики")

	assert.NoError(t, err)
	assert.Equal(t, "energetiki", slug)
}
