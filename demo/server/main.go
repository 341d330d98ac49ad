package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tingold/geoatlas"
	"github.com/tingold/geoatlas/catalog"
	"github.com/tingold/geoatlas/change"
	"github.com/tingold/geoatlas/compositor"
	"github.com/tingold/geoatlas/fetch"
	"github.com/tingold/geoatlas/internal/logger"
	"github.com/tingold/geoatlas/metrics"
)

type config struct {
	dataset   string
	photos    string
	width     int
	height    int
	redisAddr string
	fetchRPS  float64
	listen    string
}

func loadConfig() config {
	cfg := config{
		dataset:   env("ATLAS_DATASET", filepath.Join("data", "countries.geojson")),
		photos:    os.Getenv("ATLAS_PHOTOS"),
		width:     envInt("ATLAS_WIDTH", 2048),
		height:    envInt("ATLAS_HEIGHT", 1024),
		redisAddr: os.Getenv("REDIS_ADDR"),
		fetchRPS:  10,
		listen:    env("LISTEN_ADDR", ":8080"),
	}
	if v, err := strconv.ParseFloat(os.Getenv("FETCH_RPS"), 64); err == nil {
		cfg.fetchRPS = v
	}
	return cfg
}

// writeJSON encodes v as the response body. The status line is already sent
// when encoding fails, so the error is only logged.
func writeJSON(w http.ResponseWriter, l *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l.Warn("response_encode_error", "error", err)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".fgb") {
		return catalog.LoadFlatGeobuf(data, nil)
	}
	return catalog.Load(data, nil)
}

func loadPhotos(path string) ([]change.Photo, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var photos []change.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	cfg := loadConfig()

	cat, err := loadCatalog(cfg.dataset)
	if err != nil {
		l.Error("dataset_load_error", "path", cfg.dataset, "error", err)
		os.Exit(1)
	}

	layers := []fetch.Layer{{Name: "memory", Cache: fetch.NewMemoryCache(256<<20, time.Hour)}}
	if rc := fetch.OpenRedis(cfg.redisAddr, os.Getenv("REDIS_PASS"), 0); rc != nil {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Warn("redis_ping_error", "addr", cfg.redisAddr, "error", err)
		} else {
			l.Info("redis_ping_ok", "addr", cfg.redisAddr)
		}
		layers = append(layers, fetch.Layer{Name: "redis", Cache: fetch.NewRedisCache(rc, "geoatlas:photo:", 24*time.Hour, l)})
	}
	httpOpts := fetch.DefaultHTTPOptions()
	httpOpts.RequestsPerSecond = cfg.fetchRPS
	src := fetch.Source{Fetcher: fetch.NewCachedFetcher(fetch.NewHTTPFetcher(httpOpts), l, layers...)}

	opts := geoatlas.DefaultOptions()
	opts.Compositor.Size.Width = cfg.width
	opts.Compositor.Size.Height = cfg.height
	opts.Logger = l
	eng := geoatlas.New(cat, src, opts)

	photos, err := loadPhotos(cfg.photos)
	if err != nil {
		l.Error("photos_load_error", "path", cfg.photos, "error", err)
		os.Exit(1)
	}
	if _, err := eng.Update(context.Background(), photos); err != nil {
		l.Error("atlas_initial_update_error", "error", err)
		os.Exit(1)
	}

	var fgb bytes.Buffer
	if err := cat.WriteFlatGeobuf(&fgb); err != nil {
		l.Warn("fgb_export_error", "error", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/atlas.png", func(w http.ResponseWriter, r *http.Request) {
		atlas := eng.CurrentAtlas()
		if atlas == nil {
			http.Error(w, "atlas not ready", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("ETag", strconv.FormatUint(atlas.Version(), 10))
		if err := png.Encode(w, atlas.Image()); err != nil {
			l.Warn("atlas_encode_error", "error", err)
		}
	})
	mux.HandleFunc("/country", func(w http.ResponseWriter, r *http.Request) {
		lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if err := errors.Join(err1, err2); err != nil {
			http.Error(w, "lat and lon are required", http.StatusBadRequest)
			return
		}
		localized := r.URL.Query().Get("localized") == "true"

		resp := map[string]any{"lat": lat, "lon": lon, "country": nil}
		if c := eng.CountryFor(lat, lon); c != nil {
			resp["country"] = map[string]string{"code": c.Code, "name": c.DisplayName(localized)}
		}
		writeJSON(w, l, resp)
	})
	mux.HandleFunc("/photos", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var photos []change.Photo
		if err := json.NewDecoder(r.Body).Decode(&photos); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		atlas, err := eng.Update(r.Context(), photos)
		switch {
		case errors.Is(err, compositor.ErrSuperseded):
			w.WriteHeader(http.StatusAccepted)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, l, map[string]any{
			"version": atlas.Version(),
			"mode":    atlas.Mode().String(),
			"photos":  len(atlas.Assignment()),
		})
	})
	mux.HandleFunc("/data.fgb", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if _, err := w.Write(fgb.Bytes()); err != nil {
			l.Warn("fgb_write_error", "error", err)
		}
	})
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: cfg.listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		l.Info("server_start", "addr", cfg.listen, "countries", cat.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
}
