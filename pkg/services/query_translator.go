package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/apperrors"
	"github.com/LugiaKB/cinemind-backend/pkg/llm"
	"github.com/LugiaKB/cinemind-backend/pkg/logging"
	"github.com/LugiaKB/cinemind-backend/pkg/models"
	"github.com/LugiaKB/cinemind-backend/pkg/validation"
)

const (
	maxGenres   = 3
	minGenres   = 2
	minKeywords = 5
)

const recommenderPersona = "Você é um assistente virtual especializado em recomendar filmes de forma personalizada. " +
	"Seu objetivo é sugerir opções que estejam alinhadas com os gostos, preferências de gênero e " +
	"personalidade do usuário. Sua resposta deve estar EXCLUSIVAMENTE no formato JSON, aderindo ao esquema fornecido."

// QueryTranslator turns a profile snapshot into catalog search parameters.
type QueryTranslator interface {
	// Translate makes exactly one oracle call. Every failure is reported as
	// apperrors.ErrTranslationFailed.
	Translate(ctx context.Context, input *models.RecommendationInput) (*models.SearchParams, error)
}

type queryTranslator struct {
	oracle      llm.Oracle
	temperature float64
	maxKeywords int
	logger      *zap.Logger
}

// NewQueryTranslator creates a new QueryTranslator.
func NewQueryTranslator(oracle llm.Oracle, temperature float64, maxKeywords int, logger *zap.Logger) QueryTranslator {
	return &queryTranslator{
		oracle:      oracle,
		temperature: temperature,
		maxKeywords: maxKeywords,
		logger:      logger.Named("query-translator"),
	}
}

var _ QueryTranslator = (*queryTranslator)(nil)

func (t *queryTranslator) Translate(ctx context.Context, input *models.RecommendationInput) (*models.SearchParams, error) {
	prompt, err := buildTranslationPrompt(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTranslationFailed, err)
	}

	raw, err := t.oracle.GenerateJSON(ctx, &llm.JSONRequest{
		SystemInstruction: recommenderPersona,
		Prompt:            prompt,
		Schema:            searchParamsSchema(t.maxKeywords),
		Temperature:       t.temperature,
	})
	if err != nil {
		t.logger.Warn("Oracle call failed",
			zap.String("provider", t.oracle.Provider()),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTranslationFailed, err)
	}

	params, err := llm.ParseJSONResponse[models.SearchParams](raw)
	if err != nil {
		t.logger.Warn("Oracle returned an unparsable document",
			zap.String("response", logging.TruncateString(raw, 200)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTranslationFailed, err)
	}
	if err := validation.Struct(&params); err != nil {
		t.logger.Warn("Oracle document failed validation", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTranslationFailed, err)
	}

	if len(params.Genres) > maxGenres {
		params.Genres = params.Genres[:maxGenres]
	}
	if t.maxKeywords > 0 && len(params.Keywords) > t.maxKeywords {
		params.Keywords = params.Keywords[:t.maxKeywords]
	}

	t.logger.Debug("Translated profile",
		zap.Strings("genres", params.Genres),
		zap.Strings("keywords", params.Keywords))
	return &params, nil
}

func buildTranslationPrompt(input *models.RecommendationInput) (string, error) {
	profile, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	return fmt.Sprintf(`Perfil do usuário (JSON):
%s

Com base nesse perfil, escolha parâmetros de busca para filmes que combinem com o humor "%s".
- "genres": de 2 a 3 nomes de gêneros em inglês, exatamente como aparecem no TMDb (ex.: "Comedy", "Science Fiction").
- "keywords": de 5 a 10 palavras-chave ou temas específicos em inglês para refinar a busca.
Evite temas associados aos filmes da blacklist.`, profile, input.TargetMood), nil
}

func searchParamsSchema(maxKeywords int) *llm.Schema {
	if maxKeywords < minKeywords {
		maxKeywords = minKeywords
	}
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"genres": llm.StringArray(
				"2 to 3 English genre names as listed by TMDb.", minGenres, maxGenres),
			"keywords": llm.StringArray(
				"5 to 10 English keywords or themes to refine the search.", minKeywords, maxKeywords),
		},
		Required: []string{"genres", "keywords"},
	}
}
