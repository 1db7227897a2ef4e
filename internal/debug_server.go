package internal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"live-poll/domain"
	"live-poll/repositories"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one poll as shown by the inspector, table or page.
type InspectRow struct {
	ID         string
	Question   string
	CreatedBy  string
	CreatedAt  string
	Tally      string
	Votes      int
	Voters     int
	Consistent bool
}

type PageData struct {
	Items        []InspectRow
	Inconsistent int
}

func ToInspectRow(p domain.Poll) InspectRow {
	tally := lo.Map(p.Options, func(o domain.Option, _ int) string {
		return fmt.Sprintf("%s:%d", o.Answer, o.Votes)
	})
	return InspectRow{
		ID:         string(p.ID),
		Question:   p.Question,
		CreatedBy:  string(p.CreatedBy),
		CreatedAt:  p.CreatedAt.Format(time.DateTime),
		Tally:      strings.Join(tally, " "),
		Votes:      p.TotalVotes(),
		Voters:     len(p.Voters),
		Consistent: p.TotalVotes() == len(p.Voters),
	}
}

// LoadRows lists every poll, newest first. A row is inconsistent when its
// counts do not add up to its voter set.
func LoadRows(ctx context.Context, repo repositories.IPollRepository) ([]InspectRow, error) {
	polls, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(polls, func(p domain.Poll, _ int) InspectRow { return ToInspectRow(p) }), nil
}

// NewDebugHandler renders the poll table as HTML on every request.
func NewDebugHandler(log *slog.Logger, repo repositories.IPollRepository) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows, err := LoadRows(r.Context(), repo)
		if err != nil {
			log.Error("Inspector failed to list polls", "error", err)
			http.Error(w, "unable to list polls", http.StatusInternalServerError)
			return
		}

		data := PageData{
			Items:        rows,
			Inconsistent: lo.CountBy(rows, func(row InspectRow) bool { return !row.Consistent }),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Error("Inspector template failed", "error", err)
		}
	})
}

// StartDebugServer serves the inspector in the background until ctx ends.
func StartDebugServer(ctx context.Context, log *slog.Logger, repo repositories.IPollRepository, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/inspect", NewDebugHandler(log, repo))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		log.Info("Poll inspector available", "url", fmt.Sprintf("http://%s/inspect", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Poll inspector stopped", "error", err)
		}
	}()
}
