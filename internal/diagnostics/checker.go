package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"

	"mineru-cli/internal/api"
	"mineru-cli/internal/config"
	"mineru-cli/internal/domain"
)

// Section headers for the diagnostics report, in display order. The
// auth section is skipped when no token is configured but the later
// section numbers stay fixed.
const (
	SectionConfig  = "1. Configuration"
	SectionNetwork = "2. Network Connectivity"
	SectionAuth    = "3. API Authentication"
	SectionEnv     = "4. Environment Variables"
	SectionHost    = "5. Host"
)

const networkTimeout = 10 * time.Second

// StatusProber is the slice of the API client used for the token probe.
type StatusProber interface {
	TaskStatus(ctx context.Context, taskID string) (domain.Job, error)
}

// Checker validates configuration, service connectivity, and the local
// host environment.
type Checker struct {
	resolver  config.Resolver
	newProber func(token string) (StatusProber, error)
	pingBase  func(ctx context.Context) (int, error)
	getenv    func(string) string
	hostInfo  func(ctx context.Context) (*host.InfoStat, error)
	diskUsage func(path string) (*disk.UsageStat, error)
	getwd     func() (string, error)
	now       func() time.Time
	probeID   func() string
}

// NewChecker builds a checker using real service and OS dependencies.
func NewChecker(resolver config.Resolver) *Checker {
	return &Checker{
		resolver: resolver,
		newProber: func(token string) (StatusProber, error) {
			return api.NewClient(api.DefaultBaseURL, token)
		},
		pingBase:  pingBase,
		getenv:    os.Getenv,
		hostInfo:  host.InfoWithContext,
		diskUsage: disk.Usage,
		getwd:     os.Getwd,
		now:       time.Now,
		probeID: func() string {
			return "probe-" + uuid.NewString()
		},
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(ctx context.Context) domain.DiagnosticReport {
	items := c.checkConfig()
	items = append(items, c.checkNetwork(ctx))

	if token, err := c.resolver.Token(); err == nil && token != "" {
		items = append(items, c.checkAuth(ctx, token))
	}
	items = append(items, c.checkEnv()...)
	items = append(items, c.checkHost(ctx)...)

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkConfig reports token presence and the resolved output root.
func (c *Checker) checkConfig() []domain.DiagnosticItem {
	tokenItem := domain.DiagnosticItem{
		ID:      "config_token",
		Section: SectionConfig,
		Name:    "Token",
	}

	token, err := c.resolver.Token()
	switch {
	case err != nil:
		tokenItem.Status = domain.DiagnosticStatusFail
		tokenItem.Message = fmt.Sprintf("unreadable (%v)", err)
	case token != "":
		tokenItem.Status = domain.DiagnosticStatusPass
		tokenItem.Message = "configured"
	default:
		tokenItem.Status = domain.DiagnosticStatusFail
		tokenItem.Message = "not configured"
		tokenItem.Hint = "Run 'mineru config' to set an API token."
	}

	outputDir, err := c.resolver.OutputDir()
	if err != nil {
		outputDir = config.DefaultOutputDir
	}
	dirItem := domain.DiagnosticItem{
		ID:      "config_output_dir",
		Section: SectionConfig,
		Name:    "Output dir",
		Status:  domain.DiagnosticStatusInfo,
		Message: outputDir,
	}

	return []domain.DiagnosticItem{tokenItem, dirItem}
}

// checkNetwork verifies the service base URL answers at all.
func (c *Checker) checkNetwork(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      "network_base",
		Section: SectionNetwork,
		Name:    "API Base",
	}

	code, err := c.pingBase(ctx)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("unreachable (%v)", err)
		item.Hint = "Check your network connection and proxy settings."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("reachable (%d)", code)
	return item
}

// checkAuth probes the API with a task ID that cannot exist. The
// service rejecting the token and the service reporting an unknown
// task are distinguishable answers.
func (c *Checker) checkAuth(ctx context.Context, token string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:      "auth_token",
		Section: SectionAuth,
		Name:    "Authentication",
	}

	prober, err := c.newProber(token)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("failed (%v)", err)
		return item
	}

	_, err = prober.TaskStatus(ctx, c.probeID())
	switch {
	case err == nil:
		item.Status = domain.DiagnosticStatusPass
		item.Message = "valid"
	case api.IsAuth(err):
		item.Status = domain.DiagnosticStatusFail
		item.Message = "invalid token"
		item.Hint = "Run 'mineru token' to update the stored token."
	case isTaskNotFound(err):
		item.Status = domain.DiagnosticStatusPass
		item.Message = "valid"
	default:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			item.Status = domain.DiagnosticStatusWarn
			item.Message = err.Error()
		} else {
			item.Status = domain.DiagnosticStatusFail
			item.Message = fmt.Sprintf("failed (%v)", err)
		}
	}

	return item
}

// checkEnv lists the environment variables the resolver consults.
func (c *Checker) checkEnv() []domain.DiagnosticItem {
	vars := []string{config.EnvToken, config.EnvTokenAlt, config.EnvOutputDir}

	items := make([]domain.DiagnosticItem, 0, len(vars))
	for _, name := range vars {
		message := "not set"
		if c.getenv(name) != "" {
			message = "set"
		}
		items = append(items, domain.DiagnosticItem{
			ID:      "env_" + strings.ToLower(name),
			Section: SectionEnv,
			Name:    name,
			Status:  domain.DiagnosticStatusInfo,
			Message: message,
		})
	}

	return items
}

// checkHost reports the local platform and free disk space where
// downloads land.
func (c *Checker) checkHost(ctx context.Context) []domain.DiagnosticItem {
	osItem := domain.DiagnosticItem{
		ID:      "host_os",
		Section: SectionHost,
		Name:    "OS",
	}
	if info, err := c.hostInfo(ctx); err != nil {
		osItem.Status = domain.DiagnosticStatusWarn
		osItem.Message = fmt.Sprintf("unavailable (%v)", err)
	} else {
		osItem.Status = domain.DiagnosticStatusInfo
		osItem.Message = fmt.Sprintf("%s %s (%s/%s)", info.Platform, info.PlatformVersion, info.OS, info.KernelArch)
	}

	diskItem := domain.DiagnosticItem{
		ID:      "host_disk",
		Section: SectionHost,
		Name:    "Disk",
	}
	target, err := c.getwd()
	if err != nil {
		target = "."
	}
	if usage, err := c.diskUsage(target); err != nil {
		diskItem.Status = domain.DiagnosticStatusWarn
		diskItem.Message = fmt.Sprintf("unavailable (%v)", err)
	} else {
		const gb = 1 << 30
		diskItem.Status = domain.DiagnosticStatusInfo
		diskItem.Message = fmt.Sprintf("%.1f GB free of %.1f GB", float64(usage.Free)/gb, float64(usage.Total)/gb)
	}

	return []domain.DiagnosticItem{osItem, diskItem}
}

// isTaskNotFound matches the service's unknown-task answer in either
// its localized message or numeric code form.
func isTaskNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "找不到任务") || strings.Contains(msg, "-60012")
}

// pingBase performs a bounded GET against the service base URL and
// reports the HTTP status code.
func pingBase(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.DefaultBaseURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	resolver config.Resolver,
	newProber func(token string) (StatusProber, error),
	pingBase func(ctx context.Context) (int, error),
	getenv func(string) string,
	hostInfo func(ctx context.Context) (*host.InfoStat, error),
	diskUsage func(path string) (*disk.UsageStat, error),
	getwd func() (string, error),
	now func() time.Time,
	probeID func() string,
) *Checker {
	return &Checker{
		resolver:  resolver,
		newProber: newProber,
		pingBase:  pingBase,
		getenv:    getenv,
		hostInfo:  hostInfo,
		diskUsage: diskUsage,
		getwd:     getwd,
		now:       now,
		probeID:   probeID,
	}
}
