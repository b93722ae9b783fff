package main

import (
	"context"
	"crypto/tls"
	"embed"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/acme/autocert"

	"dog-walking-map/pkg/api"
	"dog-walking-map/pkg/records"
	"dog-walking-map/pkg/sheetstore"
	"dog-walking-map/pkg/tablecache"
)

//go:embed public_html/*
var content embed.FS

var domain = flag.String("domain", "", "Use 80 and 443 ports. Automatic HTTPS cert via Let's Encrypt.")
var port = flag.Int("port", 8765, "Port for running the server")
var storeType = flag.String("store-type", "gsheets", "Sheet store backend: gsheets, sqlite, or pgx (postgresql)")
var sheetID = flag.String("sheet-id", "1mg8d5CLxSR54KhNUL8SpL5jzrGN-bghTsC9vxSK8lR0", "Google Sheets spreadsheet ID (gsheets backend)")
var worksheet = flag.String("worksheet", "Map", "Worksheet/tab name inside the spreadsheet")
var credentials = flag.String("credentials", "service-account.json", "Path to the service account credentials JSON (gsheets backend)")
var dbPath = flag.String("db-path", "", "Path to the database file (sqlite backend, defaults to the current folder)")
var dbConn = flag.String("db-conn", "", "Raw DSN (pgx backend); overrides db-host and friends")
var dbHost = flag.String("db-host", "127.0.0.1", "Database host (pgx backend)")
var dbPort = flag.Int("db-port", 5432, "Database port (pgx backend)")
var dbUser = flag.String("db-user", "postgres", "Database user (pgx backend)")
var dbPass = flag.String("db-pass", "", "Database password (pgx backend)")
var dbName = flag.String("db-name", "DogWalkingMap", "Database name (pgx backend)")
var pgSSLMode = flag.String("pg-ssl-mode", "prefer", "PostgreSQL SSL mode: disable, allow, prefer, require, verify-ca, or verify-full")
var cacheTTL = flag.Duration("cache-ttl", 300*time.Second, "How long the normalized table is served from memory")
var seedCSV = flag.String("seed-csv", "", "Seed a sqlite/pgx store from this CSV export before serving")
var defaultLat = flag.Float64("default-lat", 52.52000, "Default map latitude")
var defaultLon = flag.Float64("default-lon", 13.40500, "Default map longitude")
var defaultZoom = flag.Int("default-zoom", 12, "Default map zoom")
var version = flag.Bool("version", false, "Show the application version")

var CompileVersion = "dev"

// withServerHeader wraps any http.Handler, adding a
// "Server: dog-walking-map/<CompileVersion>" header.  A HEAD request to
// "/" answers 200 with no body so health checks can stay cheap.
func withServerHeader(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "dog-walking-map/"+CompileVersion)

		if r.Method == http.MethodHead && r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// serveWithDomain runs:
//   - :80  — ACME HTTP-01 challenge plus a 301 redirect to https://<domain>/…
//   - :443 — HTTPS with automatic Let's Encrypt certificates.
//
// When autocert cannot issue a certificate for a host/SNI the server
// still presents the previously obtained fallback certificate, so IP
// and odd-SNI clients do not flood the logs with "host not configured".
// All errors are only logged.
func serveWithDomain(domain string, handler http.Handler) {
	certMgr := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		Cache:  autocert.DirCache("certs"),
		HostPolicy: func(ctx context.Context, host string) error {
			if host == domain || host == "www."+domain {
				return nil
			}
			// An IP address? Do not block it, just do not request a cert.
			if net.ParseIP(host) != nil {
				return nil
			}
			return errors.New("acme/autocert: host not configured")
		},
	}

	go func() {
		mux80 := http.NewServeMux()
		mux80.Handle("/.well-known/acme-challenge/", certMgr.HTTPHandler(nil))
		mux80.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			target := "https://" + domain + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})

		log.Printf("HTTP  server (ACME+redirect) ➜ :80")
		if err := (&http.Server{
			Addr:              ":80",
			Handler:           mux80,
			ReadHeaderTimeout: 10 * time.Second,
		}).ListenAndServe(); err != nil {
			log.Printf("HTTP  server error: %v", err)
		}
	}()

	// Daily certificate renewal check.
	go func() {
		t := time.NewTicker(24 * time.Hour)
		defer t.Stop()
		for range t.C {
			if _, err := certMgr.GetCertificate(&tls.ClientHelloInfo{ServerName: domain}); err != nil {
				log.Printf("autocert renewal check: %v", err)
			}
		}
	}()

	tlsCfg := certMgr.TLSConfig()
	tlsCfg.MinVersion = tls.VersionTLS10
	tlsCfg.NextProtos = append([]string{"http/1.0"}, tlsCfg.NextProtos...)

	// Fallback certificate for IPs and unexpected SNI values.
	var defaultCert *tls.Certificate
	go func() {
		for defaultCert == nil {
			if c, err := certMgr.GetCertificate(&tls.ClientHelloInfo{ServerName: domain}); err == nil {
				defaultCert = c
			}
			time.Sleep(time.Minute)
		}
	}()
	tlsCfg.GetCertificate = func(chi *tls.ClientHelloInfo) (*tls.Certificate, error) {
		c, err := certMgr.GetCertificate(chi)
		if err == nil {
			return c, nil
		}
		if defaultCert != nil {
			return defaultCert, nil
		}
		return nil, err
	}

	log.Printf("HTTPS server for %s ➜ :443 (TLS ≥1.0, ALPN h2/http1.1/1.0)", domain)
	if err := (&http.Server{
		Addr:              ":443",
		Handler:           handler,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}).ListenAndServeTLS("", ""); err != nil {
		log.Printf("HTTPS server error: %v", err)
	}
}

// mapHandler serves the dashboard page with the configured defaults
// baked in; everything else the page needs comes from /api/records.
func mapHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tmpl := template.Must(template.ParseFS(content, "public_html/map.html"))
	data := struct {
		DefaultLat  float64
		DefaultLon  float64
		DefaultZoom int
		Version     string
	}{*defaultLat, *defaultLon, *defaultZoom, CompileVersion}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// seedStoreFromCSV loads a CSV export of the sheet into a local SQL
// backend so the dashboard can run without credentials.
func seedStoreFromCSV(ctx context.Context, store sheetstore.Store, path string) error {
	imp, ok := store.(sheetstore.Importer)
	if !ok {
		return fmt.Errorf("store %s cannot be seeded", store.Name())
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // sheet exports may be ragged
	feed, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return imp.ImportFeed(ctx, feed)
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println(CompileVersion)
		return
	}

	ctx := context.Background()

	store, err := sheetstore.Open(ctx, sheetstore.Config{
		Backend:         *storeType,
		SpreadsheetID:   *sheetID,
		Worksheet:       *worksheet,
		CredentialsFile: *credentials,
		DBPath:          *dbPath,
		DBConn:          *dbConn,
		DBHost:          *dbHost,
		DBPort:          *dbPort,
		DBUser:          *dbUser,
		DBPass:          *dbPass,
		DBName:          *dbName,
		PGSSLMode:       *pgSSLMode,
	})
	if err != nil {
		// The dashboard still serves; every load reports "no data
		// available" until the store comes back.
		log.Printf("sheet store unavailable: %v", err)
		store = nil
	} else {
		log.Printf("sheet store ready: %s", store.Name())
	}

	if *seedCSV != "" && store != nil {
		if err := seedStoreFromCSV(ctx, store, *seedCSV); err != nil {
			log.Printf("seed from %s failed: %v", *seedCSV, err)
		} else {
			log.Printf("seeded %s from %s", store.Name(), *seedCSV)
		}
	}

	loader := func(ctx context.Context) (tablecache.Snapshot, error) {
		if store == nil {
			return tablecache.Snapshot{}, errors.New("sheet store unavailable")
		}
		feed, err := store.ReadRows(ctx)
		if err != nil {
			return tablecache.Snapshot{}, err
		}
		return tablecache.Snapshot{Table: records.FromFeed(feed), Store: store}, nil
	}
	cache := tablecache.New(*cacheTTL, loader)
	defer cache.Close()

	mux := http.NewServeMux()
	api.NewHandler(cache, log.Printf).Register(mux)
	mux.HandleFunc("/", mapHandler)
	rootHandler := withServerHeader(mux)

	if *domain != "" {
		serveWithDomain(*domain, rootHandler)
		return
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("HTTP server ➜ %s", addr)
	if err := http.ListenAndServe(addr, rootHandler); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
