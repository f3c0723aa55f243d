package fundamental

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/trendbot/internal/domain"
)

// FileProvider implementa ports.RatingProvider leyendo el rating externo de
// un archivo JSON. El módulo fundamental es un colaborador aparte: su salida
// (BUY/HOLD/SELL con fecha de publicación) entra aquí como hecho
// point-in-time, y el motor nunca lo aplica antes de esa fecha.
type FileProvider struct {
	path string
}

// NewFileProvider crea un provider que lee el rating del archivo dado.
// Un path vacío significa "sin overlay": devuelve un RatingView vacío.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// ratingFile es la forma del JSON del colaborador fundamental.
type ratingFile struct {
	Rating string `json:"rating"`
	AsOf   string `json:"as_of"` // YYYY-MM-DD; vacío = toda la muestra
	Source string `json:"source"`
}

// FetchRating lee, parsea y normaliza el rating. El archivo ausente no es
// un error cuando no se configuró path: simplemente no hay overlay.
func (p *FileProvider) FetchRating(_ context.Context, _ string) (domain.RatingView, error) {
	if p.path == "" {
		return domain.RatingView{}, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return domain.RatingView{}, fmt.Errorf("fundamental.FetchRating: read %q: %w", p.path, err)
	}

	var raw ratingFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.RatingView{}, fmt.Errorf("fundamental.FetchRating: parse %q: %w", p.path, err)
	}

	rating, err := domain.ParseRating(raw.Rating)
	if err != nil {
		return domain.RatingView{}, fmt.Errorf("fundamental.FetchRating: %q: %w", p.path, err)
	}

	view := domain.RatingView{Rating: rating, Source: raw.Source}
	if raw.AsOf != "" {
		asOf, err := time.Parse("2006-01-02", raw.AsOf)
		if err != nil {
			return domain.RatingView{}, fmt.Errorf("fundamental.FetchRating: parse as_of %q: %w", raw.AsOf, err)
		}
		view.AsOf = asOf
	}
	return view, nil
}
