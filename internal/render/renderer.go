package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/utils"
)

// Renderer turns a report view URL into paginated PDF bytes. The worker only
// sees this interface so it can be tested without a browser.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

const (
	defaultReadySelector = "#report-ready"
	defaultPageSelector  = ".report-page"
	defaultViewportWidth = 1240
)

// printCSS is injected before capture so each report section breaks onto its
// own printed page and screen-only chrome is hidden.
const printCSS = `
	.report-page { page-break-after: always; break-inside: avoid; }
	.no-print, nav, header.app-header { display: none !important; }
	body { margin: 0; }
`

// ChromeRenderer drives a headless Chromium over CDP. It either attaches to
// RENDER_BROWSER_URL or launches its own browser per render: renders are
// tens of seconds apart at most, so a fresh browser per job is simpler than
// keeping a long-lived one healthy.
type ChromeRenderer struct {
	log *logger.Logger

	controlURL    string
	readySelector string
	pageSelector  string

	navTimeout      time.Duration
	markerTimeout   time.Duration
	sectionWait     time.Duration
	pollInterval    time.Duration
	stabilityChecks int
	viewportWidth   int
}

func NewChromeRenderer(baseLog *logger.Logger) *ChromeRenderer {
	log := baseLog.With("component", "ChromeRenderer")
	return &ChromeRenderer{
		log:             log,
		controlURL:      utils.GetEnv("RENDER_BROWSER_URL", "", log),
		readySelector:   utils.GetEnv("RENDER_READY_SELECTOR", defaultReadySelector, log),
		pageSelector:    utils.GetEnv("RENDER_PAGE_SELECTOR", defaultPageSelector, log),
		navTimeout:      time.Duration(utils.GetEnvAsInt("RENDER_NAV_TIMEOUT_SECONDS", 30, log)) * time.Second,
		markerTimeout:   time.Duration(utils.GetEnvAsInt("RENDER_MARKER_TIMEOUT_SECONDS", 10, log)) * time.Second,
		sectionWait:     time.Duration(utils.GetEnvAsInt("RENDER_SECTION_WAIT_SECONDS", 20, log)) * time.Second,
		pollInterval:    500 * time.Millisecond,
		stabilityChecks: 4,
		viewportWidth:   utils.GetEnvAsInt("RENDER_VIEWPORT_WIDTH", defaultViewportWidth, log),
	}
}

func (r *ChromeRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	controlURL := r.controlURL
	if controlURL == "" {
		launched, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = launched
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.viewportWidth,
		Height:            1754,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Timeout(r.navTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	// Missing readiness marker alone is tolerated: the section poll below
	// still guards against capturing a blank document.
	expectedPages := 0
	marker, err := page.Timeout(r.markerTimeout).Element(r.readySelector)
	if err != nil {
		r.log.Warn("Readiness marker not found, proceeding best-effort",
			"selector", r.readySelector, "url", url)
	} else if attr, aErr := marker.Attribute("data-total-pages"); aErr == nil && attr != nil {
		if n, pErr := strconv.Atoi(*attr); pErr == nil && n > 0 {
			expectedPages = n
		}
	}

	count, err := r.waitForSections(page, expectedPages)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		// Zero rendered sections would mean a blank artifact; hard failure.
		return nil, fmt.Errorf("no report sections rendered for selector %q", r.pageSelector)
	}

	if _, err := page.Eval(`(css) => {
		const style = document.createElement('style');
		style.textContent = css;
		document.head.appendChild(style);
	}`, printCSS); err != nil {
		return nil, fmt.Errorf("inject print css: %w", err)
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return nil, fmt.Errorf("emulate print media: %w", err)
	}

	heightRes, err := page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return nil, fmt.Errorf("measure content height: %w", err)
	}
	height := heightRes.Value.Int()
	if height > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             r.viewportWidth,
			Height:            height,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}).Call(page); err != nil {
			return nil, fmt.Errorf("resize viewport: %w", err)
		}
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty pdf output")
	}
	return pdf, nil
}

// waitForSections polls the section count until it reaches the expected
// count or holds still for stabilityChecks consecutive polls, whichever
// comes first.
func (r *ChromeRenderer) waitForSections(page *rod.Page, expected int) (int, error) {
	deadline := time.Now().Add(r.sectionWait)
	lastCount := -1
	stable := 0
	for {
		els, err := page.Elements(r.pageSelector)
		if err != nil {
			return 0, fmt.Errorf("query report sections: %w", err)
		}
		count := len(els)
		if expected > 0 && count >= expected {
			return count, nil
		}
		if count == lastCount {
			stable++
			if count > 0 && stable >= r.stabilityChecks {
				return count, nil
			}
		} else {
			stable = 0
			lastCount = count
		}
		if time.Now().After(deadline) {
			return count, nil
		}
		time.Sleep(r.pollInterval)
	}
}
