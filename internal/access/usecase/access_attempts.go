package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
)

const (
	defaultAttemptLimit = 50
	maxAttemptLimit     = 500
)

type (
	ListAttemptsInput struct {
		Outcome string `json:"outcome"`
		Limit   int    `json:"limit" validate:"gte=0,lte=500"`
	}

	ListAttemptsOutput struct {
		Attempts []entity.AccessAttempt
	}

	ArchiveAttemptsInput struct {
		Outcome string `json:"outcome"`
	}
)

// ListAttempts returns the most recent attempts first.
func (s *Usecase) ListAttempts(ctx context.Context, in ListAttemptsInput) (*ListAttemptsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListAttempts")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	filter, ok := entity.ParseOutcomeFilter(in.Outcome)
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "outcome", "outcome must be one of all, granted or denied")
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultAttemptLimit
	}
	limit = min(limit, maxAttemptLimit)

	out := &ListAttemptsOutput{Attempts: make([]entity.AccessAttempt, 0, limit)}
	for a := range s.audit.Latest(filter) {
		out.Attempts = append(out.Attempts, a)
		if len(out.Attempts) == limit {
			break
		}
	}

	return out, nil
}

type archiveLine struct {
	ID          string    `json:"id"`
	Seq         uint64    `json:"seq"`
	PrincipalID *int64    `json:"principal_id"`
	Code        string    `json:"code"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     string    `json:"outcome"`
}

// ArchiveAttempts exports the filtered audit log as JSON lines to object
// storage and returns a presigned download link. The log is not trimmed.
func (s *Usecase) ArchiveAttempts(ctx context.Context, in ArchiveAttemptsInput) (*entity.Archive, error) {
	ctx, span := s.startSpan(ctx, "ArchiveAttempts")
	defer span.End()

	filter, ok := entity.ParseOutcomeFilter(in.Outcome)
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "outcome", "outcome must be one of all, granted or denied")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	entries := 0
	for a := range s.audit.Attempts(filter) {
		if err := enc.Encode(archiveLine{
			ID:          a.ID,
			Seq:         a.Seq,
			PrincipalID: a.PrincipalID,
			Code:        a.Code,
			Timestamp:   a.Timestamp,
			Outcome:     a.Outcome.String(),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to encode audit entry", "seq", a.Seq, "error", err)
			return nil, goerror.NewServer(err)
		}
		entries++
	}

	now := s.clock.Now().UTC()
	key := "audit/" + now.Format("2006/01/02") + "/attempts-" + filter.String() + "-" +
		strconv.FormatInt(now.Unix(), 10) + ".jsonl"

	info, err := s.storage.Put(ctx, storage.Object{
		Bucket:      s.settings.ArchiveBucket,
		Key:         key,
		Body:        buf.Bytes(),
		ContentType: "application/x-ndjson",
		Metadata:    map[string]string{"entries": strconv.Itoa(entries), "outcome": filter.String()},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload audit archive", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	url, err := s.storage.PresignGet(ctx, info.Bucket, info.Key, s.settings.ArchiveExpiry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign audit archive", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "audit archive uploaded", "key", info.Key, "entries", entries, "bytes", info.Size)

	return &entity.Archive{
		Bucket:  info.Bucket,
		Key:     info.Key,
		Entries: entries,
		Size:    info.Size,
		URL:     url,
	}, nil
}
