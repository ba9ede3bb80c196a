package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Canvas
	CourseID        int
	APIToken        string
	CanvasDomainURL string

	// Schedule resolution
	SemesterYear int
	Timezone     string

	// Matching policy. When true, ambiguous prefix/keyword matches fall
	// back to the legacy first-match-in-reader-order behavior.
	AllowFirstMatch bool

	PageSize int

	// SFTP (report upload)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPKnownHosts            string
	SFTPInsecureIgnoreHostKey bool
}

// Load reads configuration from the environment. If path is non-empty the
// file is loaded into the environment first (dotenv format); a missing file
// is not an error so the same binary works with plain env vars.
func Load(path string) Config {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "config: could not read %s: %v\n", path, err)
		}
	}

	return Config{
		CourseID:        getenvInt("CANVAS_COURSE_ID", 0),
		APIToken:        strings.TrimSpace(os.Getenv("CANVAS_API_TOKEN")),
		CanvasDomainURL: strings.TrimRight(os.Getenv("CANVAS_DOMAIN_URL"), "/"),

		SemesterYear: getenvInt("SEMESTER_YEAR", 2026),
		Timezone:     getenv("COURSE_TIMEZONE", "America/Detroit"),

		AllowFirstMatch: getenvBool("RECONCILE_ALLOW_FIRST_MATCH", false),

		PageSize: getenvInt("CANVAS_PAGE_SIZE", 100),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/"),
		SFTPKnownHosts:            getenv("SFTP_KNOWN_HOSTS", ""),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOST_KEY", true),
	}
}

// Validate fails fast on anything the run cannot proceed without.
// Missing configuration is a startup error, never a per-target failure.
func (c Config) Validate() error {
	var missing []string
	if c.CourseID <= 0 {
		missing = append(missing, "CANVAS_COURSE_ID")
	}
	if c.APIToken == "" {
		missing = append(missing, "CANVAS_API_TOKEN")
	}
	if c.CanvasDomainURL == "" {
		missing = append(missing, "CANVAS_DOMAIN_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.SemesterYear < 2000 || c.SemesterYear > 2100 {
		return fmt.Errorf("config: SEMESTER_YEAR=%d out of range", c.SemesterYear)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: COURSE_TIMEZONE=%q is not a valid IANA zone: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured civil timezone. Call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
