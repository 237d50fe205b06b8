package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"voicejudge/internal/experiment"
)

const timeLayout = time.RFC3339Nano

type sessionRow struct {
	ID              string `db:"id"`
	ParticipantID   string `db:"participant_id"`
	Age             int    `db:"age"`
	Gender          string `db:"gender"`
	Nativity        string `db:"nativity"`
	Familiarity     string `db:"familiarity"`
	StartedAt       string `db:"started_at"`
	EndedAt         string `db:"ended_at"`
	Aborted         bool   `db:"aborted"`
	TrialsPlanned   int    `db:"trials_planned"`
	TrialsCompleted int    `db:"trials_completed"`
	Correct         int    `db:"correct"`
}

type trialRow struct {
	SessionID         string          `db:"session_id"`
	TrialIndex        int             `db:"trial_index"`
	Filename          string          `db:"filename"`
	Path              string          `db:"path"`
	Condition         string          `db:"condition"`
	Authenticity      string          `db:"authenticity"`
	Difficulty        string          `db:"difficulty"`
	Response          string          `db:"response"`
	ResponseTime      float64         `db:"response_time"`
	Correct           int             `db:"correct"`
	Confidence        int             `db:"confidence"`
	Naturalness       int             `db:"naturalness"`
	F0Mean            sql.NullFloat64 `db:"f0_mean"`
	F0Std             sql.NullFloat64 `db:"f0_std"`
	IntensityMean     sql.NullFloat64 `db:"intensity_mean"`
	IntensityStd      sql.NullFloat64 `db:"intensity_std"`
	F1                sql.NullFloat64 `db:"f1"`
	F2                sql.NullFloat64 `db:"f2"`
	F3                sql.NullFloat64 `db:"f3"`
	Jitter            sql.NullFloat64 `db:"jitter"`
	Shimmer           sql.NullFloat64 `db:"shimmer"`
	HNR               sql.NullFloat64 `db:"hnr"`
	SpectralCentroid  sql.NullFloat64 `db:"spectral_centroid"`
	SpectralBandwidth sql.NullFloat64 `db:"spectral_bandwidth"`
	SpectralRolloff   sql.NullFloat64 `db:"spectral_rolloff"`
	ZeroCrossingRate  sql.NullFloat64 `db:"zero_crossing_rate"`
}

const insertSession = `
INSERT INTO sessions (
    id, participant_id, age, gender, nativity, familiarity,
    started_at, ended_at, aborted, trials_planned, trials_completed, correct
) VALUES (
    :id, :participant_id, :age, :gender, :nativity, :familiarity,
    :started_at, :ended_at, :aborted, :trials_planned, :trials_completed, :correct
)`

const insertTrial = `
INSERT INTO trial_results (
    session_id, trial_index, filename, path, condition, authenticity, difficulty,
    response, response_time, correct, confidence, naturalness,
    f0_mean, f0_std, intensity_mean, intensity_std, f1, f2, f3,
    jitter, shimmer, hnr, spectral_centroid, spectral_bandwidth, spectral_rolloff, zero_crossing_rate
) VALUES (
    :session_id, :trial_index, :filename, :path, :condition, :authenticity, :difficulty,
    :response, :response_time, :correct, :confidence, :naturalness,
    :f0_mean, :f0_std, :intensity_mean, :intensity_std, :f1, :f2, :f3,
    :jitter, :shimmer, :hnr, :spectral_centroid, :spectral_bandwidth, :spectral_rolloff, :zero_crossing_rate
)`

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func newSessionRow(session *experiment.Session) sessionRow {
	results := session.Results()
	p := session.Participant
	return sessionRow{
		ID:              session.ID,
		ParticipantID:   p.ID,
		Age:             p.Age,
		Gender:          p.Gender,
		Nativity:        p.Nativity,
		Familiarity:     p.Familiarity,
		StartedAt:       session.StartedAt.UTC().Format(timeLayout),
		EndedAt:         session.EndedAt.UTC().Format(timeLayout),
		Aborted:         session.Aborted,
		TrialsPlanned:   len(session.Trials),
		TrialsCompleted: len(results),
		Correct:         experiment.CorrectCount(results),
	}
}

func newTrialRow(sessionID string, r experiment.TrialResult) trialRow {
	f := r.Features
	return trialRow{
		SessionID:         sessionID,
		TrialIndex:        r.Index,
		Filename:          r.Trial.Filename,
		Path:              r.Trial.Path,
		Condition:         string(r.Trial.Condition),
		Authenticity:      string(r.Trial.Authenticity),
		Difficulty:        string(r.Trial.Difficulty),
		Response:          string(r.Response),
		ResponseTime:      r.ResponseTime,
		Correct:           r.Correct,
		Confidence:        r.Confidence,
		Naturalness:       r.Naturalness,
		F0Mean:            nullable(f.F0Mean),
		F0Std:             nullable(f.F0Std),
		IntensityMean:     nullable(f.IntensityMean),
		IntensityStd:      nullable(f.IntensityStd),
		F1:                nullable(f.F1),
		F2:                nullable(f.F2),
		F3:                nullable(f.F3),
		Jitter:            nullable(f.Jitter),
		Shimmer:           nullable(f.Shimmer),
		HNR:               nullable(f.HNR),
		SpectralCentroid:  nullable(f.SpectralCentroid),
		SpectralBandwidth: nullable(f.SpectralBandwidth),
		SpectralRolloff:   nullable(f.SpectralRolloff),
		ZeroCrossingRate:  nullable(f.ZeroCrossingRate),
	}
}

// Save implements experiment.Sink by recording the session and its results.
func (s *Store) Save(ctx context.Context, session *experiment.Session) error {
	return s.RecordSession(ctx, session)
}

// RecordSession stores session and its completed trials in one transaction.
// Recording the same session twice replaces the earlier copy.
func (s *Store) RecordSession(ctx context.Context, session *experiment.Session) error {
	if session == nil {
		return fmt.Errorf("record session: nil session")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin session tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, table := range []string{"trial_results WHERE session_id", "sessions WHERE id"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" = ?", session.ID); err != nil {
				return fmt.Errorf("replace session: %w", err)
			}
		}
		if _, err := tx.NamedExecContext(ctx, insertSession, newSessionRow(session)); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		for _, r := range session.Results() {
			if _, err := tx.NamedExecContext(ctx, insertTrial, newTrialRow(session.ID, r)); err != nil {
				return fmt.Errorf("insert trial %d: %w", r.Index, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit session: %w", err)
		}
		return nil
	})
}

// SessionInfo is one archived session as listed by the stats command.
type SessionInfo struct {
	ID              string
	ParticipantID   string
	StartedAt       time.Time
	EndedAt         time.Time
	Aborted         bool
	TrialsPlanned   int
	TrialsCompleted int
	Correct         int
}

// Accuracy returns the percentage of correct completed trials.
func (i SessionInfo) Accuracy() float64 {
	if i.TrialsCompleted == 0 {
		return 0
	}
	return 100 * float64(i.Correct) / float64(i.TrialsCompleted)
}

// ListSessions returns the most recent sessions first. A limit of zero or
// less returns all of them.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionInfo, error) {
	query := `SELECT * FROM sessions ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		started, err := time.Parse(timeLayout, row.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("session %s: parse started_at: %w", row.ID, err)
		}
		ended, err := time.Parse(timeLayout, row.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("session %s: parse ended_at: %w", row.ID, err)
		}
		out = append(out, SessionInfo{
			ID:              row.ID,
			ParticipantID:   row.ParticipantID,
			StartedAt:       started,
			EndedAt:         ended,
			Aborted:         row.Aborted,
			TrialsPlanned:   row.TrialsPlanned,
			TrialsCompleted: row.TrialsCompleted,
			Correct:         row.Correct,
		})
	}
	return out, nil
}
