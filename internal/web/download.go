package web

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/mexp/internal/domain"
	"github.com/emiliopalmerini/mexp/internal/logx"
)

// handleDownload streams a zip of the experiment's execution info, results
// and log.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	project, id, ok := experimentArgs(w, r)
	if !ok {
		return
	}
	summary, err := s.store.GetExperiment(r.Context(), project, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.zip"`, project, id))
	if err := writeArchive(w, summary); err != nil {
		// Headers are gone; the client sees a truncated archive.
		logx.WithExperiment(logx.Project(r.Context(), project), id).Warn("archive write failed", "err", err)
	}
}

func writeArchive(w http.ResponseWriter, summary *domain.ExperimentSummary) error {
	zw := zip.NewWriter(w)
	modified := time.Now()

	add := func(name string, data []byte) error {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}

	info, err := json.MarshalIndent(summary.ExecutionInfo, "", "  ")
	if err != nil {
		return err
	}
	if err := add("execution_info.json", info); err != nil {
		return err
	}
	if summary.Results != nil {
		results, err := json.MarshalIndent(summary.Results, "", "  ")
		if err != nil {
			return err
		}
		if err := add("results.json", results); err != nil {
			return err
		}
	}
	if len(summary.Logs) > 0 {
		if err := add("log.txt", []byte(strings.Join(summary.Logs, "\n")+"\n")); err != nil {
			return err
		}
	}
	return zw.Close()
}
