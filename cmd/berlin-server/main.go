// Command berlin-server exposes spec.md §6.1's HTTP surface over a loaded
// Berlin dataset, plus two supplements grounded in
// _examples/original_source/berlin-web/src/main.rs: an -interactive CLI
// search loop (cli_search_query) and a GET /berlin/search/schema endpoint
// describing the response shape (the original ships no schema endpoint,
// but berlin-web/src/location_json.rs's hand-written Location JSON layout
// is exactly what would need documenting for a host without a shared Rust
// type). Grounded in the teacher's plain net/http usage — no router
// library appears anywhere in the example pack, so this stays stdlib.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/flaxandteal/berlin"
	"github.com/flaxandteal/berlin/internal/berlog"
	"github.com/flaxandteal/berlin/internal/config"
	"github.com/flaxandteal/berlin/internal/store"
)

func main() {
	dataDir := flag.String("data", "./testdata/dataset", "directory containing state.json, subdivision.json and locode.json")
	addr := flag.String("addr", "", "listen address, overrides server.listen_addr from -config")
	configPath := flag.String("config", "", "path to a weights.toml overriding the calibrated defaults")
	interactive := flag.Bool("interactive", false, "run a CLI search loop instead of serving HTTP")
	flag.BoolVar(interactive, "i", false, "shorthand for -interactive")
	flag.Parse()

	berlog.SetLevelFromEnv()
	log := berlog.Default("berlin-server")

	cfg := config.Load(*configPath)
	db, err := berlin.LoadWithConfig(*dataDir, cfg)
	if err != nil {
		log.Fatal("failed to load dataset", "dir", *dataDir, "err", err)
	}

	if *interactive {
		runInteractive(db, log)
		return
	}

	listenAddr := cfg.Server.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/berlin/search", searchHandler(db, cfg, log))
	mux.HandleFunc("/berlin/search/schema", schemaHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})

	log.Info("listening", "addr", listenAddr)
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Fatal("server exited", "err", err)
	}
}

// searchResponse is spec.md §6.1's response envelope.
type searchResponse struct {
	Time    string           `json:"time"`
	Query   any              `json:"query"`
	Results []searchResultJSON `json:"results"`
}

type searchResultJSON struct {
	Loc    locationJSON `json:"loc"`
	Score  int          `json:"score"`
	Offset offsetJSON   `json:"offset"`
}

type offsetJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// locationJSON mirrors the field layout of
// berlin-web/src/location_json.rs's serialized Location: encoding and
// natural id split out of the composite key, names/codes resolved to their
// interned strings, and the parent refs flattened to their codes.
type locationJSON struct {
	Key        string   `json:"key"`
	Encoding   string   `json:"encoding"`
	ID         string   `json:"id"`
	Names      []string `json:"names"`
	Codes      []string `json:"codes,omitempty"`
	State      string   `json:"state,omitempty"`
	Subdiv     string   `json:"subdiv,omitempty"`
	Supersedes string   `json:"supersedes,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

func toLocationJSON(db *berlin.Db, loc *store.Location) locationJSON {
	out := locationJSON{
		Key:      string(loc.Key),
		Encoding: string(loc.Encoding),
		ID:       loc.ID,
	}
	for _, id := range loc.Names {
		if name, ok := db.ResolveName(id); ok {
			out.Names = append(out.Names, name)
		}
	}
	for _, id := range loc.Codes {
		if code, ok := db.ResolveName(id); ok {
			out.Codes = append(out.Codes, code)
		}
	}
	if loc.State != nil {
		out.State = loc.State.Code
	}
	if loc.Subdiv != nil {
		out.Subdiv = loc.Subdiv.Code
	}
	if loc.Supersedes != "" {
		out.Supersedes = string(loc.Supersedes)
	}
	if loc.HasCoords {
		lat, lon := loc.Lat, loc.Lon
		out.Lat, out.Lon = &lat, &lon
	}
	return out
}

func searchHandler(db *berlin.Db, cfg *config.Config, log *charmlog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		q := r.URL.Query()

		limit := cfg.Server.DefaultLimit
		if raw := q.Get("limit"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				writeError(w, http.StatusBadRequest, "malformed limit parameter")
				return
			}
			limit = uint32(parsed)
		}

		levDistance := int(cfg.Server.DefaultLevDistance)
		if raw := q.Get("lev_distance"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 || parsed > 2 {
				writeError(w, http.StatusBadRequest, "malformed lev_distance parameter, expected 0, 1 or 2")
				return
			}
			levDistance = parsed
		}

		plan := db.Plan(q.Get("q"), q.Get("state"), limit, levDistance)
		results := db.QueryPlan(plan)

		resp := searchResponse{
			Time:    time.Since(start).String(),
			Query:   plan,
			Results: make([]searchResultJSON, 0, len(results)),
		}
		for _, res := range results {
			resp.Results = append(resp.Results, searchResultJSON{
				Loc:   toLocationJSON(db, res.Location),
				Score: int(res.Score),
				Offset: offsetJSON{
					Start: res.Offset.Start,
					End:   res.Offset.End,
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("failed to encode search response", "err", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// schemaHandler serves a hand-written JSON Schema for the search response,
// grounded in the field layout searchResponse/locationJSON define above; no
// example repo carries a schema-generation library, so this is written out
// literally rather than derived by reflection.
func schemaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, searchResponseSchema)
}

const searchResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "BerlinSearchResponse",
  "type": "object",
  "required": ["time", "query", "results"],
  "properties": {
    "time": {"type": "string"},
    "query": {"type": "object"},
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["loc", "score", "offset"],
        "properties": {
          "loc": {
            "type": "object",
            "required": ["key", "encoding", "id", "names"],
            "properties": {
              "key": {"type": "string"},
              "encoding": {"type": "string", "enum": ["UN-LOCODE", "ISO-3166-1", "ISO-3166-2"]},
              "id": {"type": "string"},
              "names": {"type": "array", "items": {"type": "string"}},
              "codes": {"type": "array", "items": {"type": "string"}},
              "state": {"type": "string"},
              "subdiv": {"type": "string"},
              "supersedes": {"type": "string"},
              "lat": {"type": "number"},
              "lon": {"type": "number"}
            }
          },
          "score": {"type": "integer"},
          "offset": {
            "type": "object",
            "required": ["start", "end"],
            "properties": {
              "start": {"type": "integer"},
              "end": {"type": "integer"}
            }
          }
        }
      }
    }
  }
}
`

// runInteractive implements the -interactive supplement, a stdin search
// loop grounded in cli_search_query from
// _examples/original_source/berlin-web/src/main.rs, translated from
// promptly::prompt to a bufio.Scanner readline loop.
func runInteractive(db *berlin.Db, log *charmlog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Search Term: ")
		if !scanner.Scan() {
			return
		}
		term := scanner.Text()
		if term == "" {
			continue
		}

		start := time.Now()
		results := db.Query(term, "", 5, 2)
		log.Info("query completed", "elapsed", time.Since(start), "results", len(results))

		for i, res := range results {
			names := make([]string, 0, len(res.Location.Names))
			for _, id := range res.Location.Names {
				if name, ok := db.ResolveName(id); ok {
					names = append(names, name)
				}
			}
			fmt.Printf("#%d %s score=%d %v\n", i, res.Location.Key, int(res.Score), names)
		}
		fmt.Println()
	}
}
