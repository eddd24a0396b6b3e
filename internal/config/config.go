package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by COURSEFORGE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("COURSEFORGE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// MasterDatabaseURL is the connection string for the master logical
// database, where the tenant records themselves live.
func MasterDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// MasterDBName names the master logical database. Its registry entry is
// seeded before any tenant entries.
func MasterDBName() string {
	name := os.Getenv("DB_NAME")
	if name == "" {
		return "courseforge"
	}
	return name
}

func DBHost() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return "localhost"
	}
	return host
}

func DBUser() string {
	return os.Getenv("DB_USER")
}

func DBPass() string {
	return os.Getenv("DB_PASS")
}

func DBPort() int {
	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		return 5432
	}
	return port
}

// ServerRoot is the directory the shared framework template is cloned into.
func ServerRoot() string {
	root := os.Getenv("SERVER_ROOT")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return root
}

// TempDir is the root under which per-tenant workspaces are created.
func TempDir() string {
	dir := os.Getenv("TEMP_DIR")
	if dir == "" {
		return "temp"
	}
	return dir
}

// FrameworkDir is the directory name of the shared framework template,
// relative to ServerRoot.
func FrameworkDir() string {
	dir := os.Getenv("FRAMEWORK_DIR")
	if dir == "" {
		return "course_framework"
	}
	return dir
}

// FrameworkRepository is the upstream the framework template is cloned from
// when it is absent on disk.
func FrameworkRepository() string {
	repo := os.Getenv("FRAMEWORK_REPOSITORY")
	if repo == "" {
		return "https://github.com/courseforge/course_framework.git"
	}
	return repo
}

// FrameworkRevision is the branch or tag checked out when cloning the
// framework template. Empty means the remote default branch.
func FrameworkRevision() string {
	return os.Getenv("FRAMEWORK_REVISION")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
