package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// 区分名から英字スラッグを作るための翻訳クライアント。
// 外部APIが落ちていてもカタログ登録は止めたくないので、失敗時は翻字にフォールバックする。
type Translator interface {
	ToSlug(ctx context.Context, name string) (string, error)
}

type HTTPTranslator struct {
	endpoint string
	client   *http.Client
}

func NewHTTPTranslator(endpoint string) *HTTPTranslator {
	return &HTTPTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (t *HTTPTranslator) ToSlug(ctx context.Context, name string) (string, error) {
	translated, err := t.translate(ctx, name)
	if err != nil || translated == "" {
		// フォールバック: ローカル翻字
		return Slugify(Transliterate(name)), nil
	}
	return Slugify(translated), nil
}

func (t *HTTPTranslator) translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("source", "auto")
	form.Set("target", "en")
	form.Set("format", "text")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: status %d", resp.StatusCode)
	}

	var body translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.TranslatedText, nil
}

// 翻訳APIを使わないローカル実装
type LocalTranslator struct{}

func (LocalTranslator) ToSlug(_ context.Context, name string) (string, error) {
	return Slugify(Transliterate(name)), nil
}

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Transliterate はキリル文字をラテン文字へ置き換える。対応外の文字はそのまま。
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower := unicode.ToLower(r)
		if lat, ok := cyrillic[lower]; ok {
			b.WriteString(lat)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Slugify は小文字化して英数字以外をハイフンに畳む。
func Slugify(s string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
