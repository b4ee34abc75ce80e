package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/kiyora/animehub/pkg/jikan"
	"github.com/kiyora/animehub/pkg/kitsu"
	"github.com/kiyora/animehub/pkg/logger"
	"github.com/kiyora/animehub/pkg/storage"
)

var titleFolder = cases.Fold()

// episodeCandidate is a fully merged episode record ready to persist. Both
// the single and bulk sync paths produce these through mergeCandidates.
type episodeCandidate struct {
	Number             int
	Title              string
	TitleProvenance    storage.Provenance
	Synopsis           string
	SynopsisProvenance storage.Provenance
	AirDate            *time.Time
	Duration           string
	Thumbnail          string
}

// mergeCandidates merges the primary (jikan) and secondary (kitsu) candidate
// sets. The primary provider defines identity: only its episode numbers
// produce candidates, the secondary enriches them. Secondary synopsis wins
// over primary because kitsu's summaries are richer; title goes the other
// way. Missing values fall back to generated placeholders tagged as such.
func mergeCandidates(animeTitle string, primary []jikan.Episode, secondary map[int]kitsu.Episode) []episodeCandidate {
	candidates := make([]episodeCandidate, 0, len(primary))

	for _, p := range primary {
		sec := secondary[p.Number]

		c := episodeCandidate{
			Number:   p.Number,
			AirDate:  p.AirDate,
			Duration: p.Duration,
		}

		switch {
		case p.Title != "":
			c.Title = p.Title
			c.TitleProvenance = storage.ProvenanceProvider
		case sec.CanonicalTitle != "":
			c.Title = sec.CanonicalTitle
			c.TitleProvenance = storage.ProvenanceProvider
		default:
			c.Title = fmt.Sprintf("Episode %d", p.Number)
			c.TitleProvenance = storage.ProvenanceGenerated
		}

		switch {
		case sec.Synopsis != "":
			c.Synopsis = sec.Synopsis
			c.SynopsisProvenance = storage.ProvenanceProvider
		case p.Synopsis != "":
			c.Synopsis = p.Synopsis
			c.SynopsisProvenance = storage.ProvenanceProvider
		default:
			c.Synopsis = fmt.Sprintf("Episode %d of %s", p.Number, animeTitle)
			c.SynopsisProvenance = storage.ProvenanceGenerated
		}

		c.Thumbnail = sec.Thumbnail

		candidates = append(candidates, c)
	}

	return candidates
}

// applyCandidate computes the patch for an existing episode. Only fields
// that are empty or still hold a generated placeholder are touched; provider
// and authored values survive every sync. Returns false when nothing would
// change.
func applyCandidate(existing *storage.Episode, c episodeCandidate) (storage.EpisodeUpdate, bool) {
	var update storage.EpisodeUpdate
	changed := false

	overwritable := func(value string, provenance storage.Provenance) bool {
		return value == "" || provenance == storage.ProvenanceGenerated
	}

	if overwritable(existing.Title, existing.TitleProvenance) &&
		c.TitleProvenance == storage.ProvenanceProvider && existing.Title != c.Title {
		update.Title = &c.Title
		update.TitleProvenance = &c.TitleProvenance
		changed = true
	}

	if overwritable(existing.Synopsis, existing.SynopsisProvenance) &&
		c.SynopsisProvenance == storage.ProvenanceProvider && existing.Synopsis != c.Synopsis {
		update.Synopsis = &c.Synopsis
		update.SynopsisProvenance = &c.SynopsisProvenance
		changed = true
	}

	if existing.AirDate == nil && c.AirDate != nil {
		update.AirDate = c.AirDate
		changed = true
	}

	if existing.Duration == "" && c.Duration != "" {
		update.Duration = &c.Duration
		changed = true
	}

	if existing.Thumbnail == "" && c.Thumbnail != "" {
		update.Thumbnail = &c.Thumbnail
		changed = true
	}

	return update, changed
}

// SyncEpisodes reconciles one anime's episode set against the providers. A
// primary-provider failure degrades to a zero-count success; a secondary
// failure degrades to primary-only. Persistence failures abort this anime's
// sync.
func (m Manager) SyncEpisodes(ctx context.Context, animeID primitive.ObjectID) (*SyncResult, error) {
	anime, err := m.storage.GetAnime(ctx, animeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NotFoundError{Entity: "anime", ID: animeID.Hex()}
		}
		return nil, fmt.Errorf("get anime: %w", err)
	}

	if anime.MALID == nil {
		return nil, ValidationError{Reason: "anime has no external id to sync from"}
	}

	return m.syncAnimeEpisodes(ctx, anime)
}

func (m Manager) syncAnimeEpisodes(ctx context.Context, anime *storage.Anime) (*SyncResult, error) {
	log := logger.FromCtx(ctx)

	result := &SyncResult{
		AnimeID: anime.ID.Hex(),
		Title:   anime.Title,
		Sources: []string{},
	}

	primary, err := m.jikan.GetAnimeEpisodes(ctx, *anime.MALID)
	if err != nil {
		log.Warn("primary episode provider failed, nothing to sync",
			zap.String("anime", anime.Title), zap.Error(ProviderError{Provider: "jikan", Err: err}))
		return result, nil
	}

	if len(primary) == 0 {
		log.Debug("no episode candidates from primary provider", zap.String("anime", anime.Title))
		return result, nil
	}

	result.Sources = append(result.Sources, "jikan")

	secondary := m.fetchSecondaryEpisodes(ctx, anime.Title)
	if len(secondary) > 0 {
		result.Sources = append(result.Sources, "kitsu")
	}

	candidates := mergeCandidates(anime.Title, primary, secondary)

	var createdIDs []primitive.ObjectID
	now := time.Now()

	for _, c := range candidates {
		existing, err := m.storage.GetEpisodeByNumber(ctx, anime.ID, c.Number)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			id, err := m.storage.CreateEpisode(ctx, storage.Episode{
				AnimeID:            anime.ID,
				Number:             c.Number,
				Title:              c.Title,
				TitleProvenance:    c.TitleProvenance,
				Synopsis:           c.Synopsis,
				SynopsisProvenance: c.SynopsisProvenance,
				AirDate:            c.AirDate,
				Duration:           c.Duration,
				Thumbnail:          c.Thumbnail,
				UserRatings:        []storage.UserRating{},
				CreatedAt:          now,
				UpdatedAt:          now,
			})
			if err != nil {
				return nil, fmt.Errorf("create episode %d: %w", c.Number, err)
			}
			createdIDs = append(createdIDs, id)
			result.Added++

		case err != nil:
			return nil, fmt.Errorf("lookup episode %d: %w", c.Number, err)

		default:
			update, changed := applyCandidate(existing, c)
			if !changed {
				continue
			}
			if _, err := m.storage.UpdateEpisode(ctx, existing.ID, update); err != nil {
				return nil, fmt.Errorf("update episode %d: %w", c.Number, err)
			}
			result.Updated++
		}
	}

	// one episode-set write per anime, not one per episode
	if len(createdIDs) > 0 {
		if err := m.storage.AddEpisodesToAnime(ctx, anime.ID, createdIDs); err != nil {
			return nil, fmt.Errorf("append episodes to anime: %w", err)
		}
	}

	log.Debug("episode sync finished",
		zap.String("anime", anime.Title),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated))

	return result, nil
}

// fetchSecondaryEpisodes joins kitsu by title and returns its episodes keyed
// by number. Any failure degrades to an empty map.
func (m Manager) fetchSecondaryEpisodes(ctx context.Context, title string) map[int]kitsu.Episode {
	log := logger.FromCtx(ctx)

	folded := titleFolder.String(title)
	seriesID, ok := m.seriesIDs.Get(folded)
	if !ok {
		series, err := m.kitsu.SearchAnime(ctx, title)
		if err != nil {
			log.Warn("secondary provider search failed, degrading to primary-only",
				zap.String("title", title), zap.Error(ProviderError{Provider: "kitsu", Err: err}))
			return nil
		}

		if len(series) == 0 {
			return nil
		}

		// prefer an exact case-folded title match, else first result
		match := series[0]
		for _, s := range series {
			if titleFolder.String(s.CanonicalTitle) == folded {
				match = s
				break
			}
		}

		seriesID = match.ID
		m.seriesIDs.Set(folded, seriesID)
	}

	episodes, err := m.kitsu.GetEpisodes(ctx, seriesID)
	if err != nil {
		log.Warn("secondary provider episodes failed, degrading to primary-only",
			zap.String("title", title), zap.Error(ProviderError{Provider: "kitsu", Err: err}))
		return nil
	}

	byNumber := make(map[int]kitsu.Episode, len(episodes))
	for _, e := range episodes {
		if e.Number > 0 {
			byNumber[e.Number] = e
		}
	}

	return byNumber
}

// SyncAllEpisodes sweeps every anime that carries an external id. Calls are
// paced by the sync limiter to respect provider quotas, and one anime's
// failure never stops the rest.
func (m Manager) SyncAllEpisodes(ctx context.Context) (*BulkSyncResult, error) {
	log := logger.FromCtx(ctx)

	animes, err := m.storage.ListAnimeWithMALID(ctx)
	if err != nil {
		return nil, fmt.Errorf("list anime: %w", err)
	}

	result := &BulkSyncResult{
		Results: []SyncResult{},
		Errors:  []SyncError{},
	}

	for _, anime := range animes {
		if err := m.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("sync pacing: %w", err)
		}

		r, err := m.syncAnimeEpisodes(ctx, anime)
		if err != nil {
			log.Warn("anime sync failed, continuing batch",
				zap.String("anime", anime.Title), zap.Error(err))
			result.Errors = append(result.Errors, SyncError{
				AnimeID: anime.ID.Hex(),
				Title:   anime.Title,
				Error:   err.Error(),
			})
			continue
		}

		result.Synced++
		result.Added += r.Added
		result.Updated += r.Updated
		result.Results = append(result.Results, *r)
	}

	return result, nil
}

// SyncCatalog imports the top ranking entries from MAL, creating anime that
// aren't in the catalog yet and syncing episodes for each new one.
func (m Manager) SyncCatalog(ctx context.Context, limit int) (*CatalogSyncResult, error) {
	log := logger.FromCtx(ctx)

	if limit <= 0 || limit > m.config.CatalogLimit {
		limit = m.config.CatalogLimit
	}

	entries, err := m.mal.ListRanking(ctx, limit, 0)
	if err != nil {
		return nil, ProviderError{Provider: "mal", Err: err}
	}

	result := &CatalogSyncResult{Errors: []SyncError{}}
	now := time.Now()

	for _, entry := range entries {
		_, err := m.storage.GetAnimeByMALID(ctx, entry.MALID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("lookup anime by external id: %w", err)
		}

		malID := entry.MALID
		anime := storage.Anime{
			MALID:         &malID,
			Title:         entry.Title,
			TitleEnglish:  entry.TitleEnglish,
			TitleJapanese: entry.TitleJapanese,
			Synopsis:      entry.Synopsis,
			Poster:        entry.Poster,
			Type:          entry.Type,
			Status:        entry.Status,
			StartDate:     parseProviderDate(entry.StartDate),
			EndDate:       parseProviderDate(entry.EndDate),
			Genres:        entry.Genres,
			Studios:       entry.Studios,
			Source:        entry.Source,
			NumEpisodes:   entry.NumEpisodes,
			EpisodeIDs:    []primitive.ObjectID{},
			UserRatings:   []storage.UserRating{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if entry.Popularity > 0 {
			popularity := entry.Popularity
			anime.Popularity = &popularity
		}

		id, err := m.storage.CreateAnime(ctx, anime)
		if err != nil {
			return nil, fmt.Errorf("create anime %q: %w", entry.Title, err)
		}
		anime.ID = id
		result.Imported++

		if err := m.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("sync pacing: %w", err)
		}

		r, err := m.syncAnimeEpisodes(ctx, &anime)
		if err != nil {
			log.Warn("episode sync for imported anime failed",
				zap.String("anime", anime.Title), zap.Error(err))
			result.Errors = append(result.Errors, SyncError{
				AnimeID: id.Hex(),
				Title:   anime.Title,
				Error:   err.Error(),
			})
			continue
		}
		result.Episodes += r.Added
	}

	return result, nil
}

// parseProviderDate parses MAL's partial dates. They arrive as full dates,
// year-month, or bare years.
func parseProviderDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
