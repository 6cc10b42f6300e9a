package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	key := summaryCacheKey(year, month)
	if sum, found := s.summaryCache.Get(key); found {
		writeJSON(w, http.StatusOK, sum)
		return
	}

	sum := s.svc.MonthSummary(year, month)
	s.summaryCache.Set(key, sum)
	writeJSON(w, http.StatusOK, sum)
}

// parseYearMonth reads the year and month query parameters, defaulting to the
// current calendar month.
func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid year")
			return 0, 0, false
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid month")
			return 0, 0, false
		}
		month = m
	}
	return year, month, true
}

func summaryCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	key := summaryCacheKey(year, month)
	if png, found := s.chartCache.Get(key); found {
		servePNG(w, png)
		return
	}

	sum := s.svc.MonthSummary(year, month)
	if len(sum.Ranked) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	png, err := renderCategoryDonut(sum)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.chartCache.Set(key, png)
	servePNG(w, png)
}

func servePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
