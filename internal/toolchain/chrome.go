package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/process"
)

// A4 page size in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	mmPerInch      = 25.4
)

// Chrome prints HTML sources to PDF with headless Chrome via go-rod. The
// browser starts lazily on the first Compile and is reused until Close.
// Rod downloads Chromium when no browser is found.
type Chrome struct {
	Bin       string // optional browser binary; ROD_BROWSER_BIN is used when empty
	NoSandbox bool
	Timeout   time.Duration
	Logger    *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (c *Chrome) Format() SourceFormat { return FormatHTML }

// LookPath reports the browser binary rod would use, if one is installed.
func (c *Chrome) LookPath() (string, bool) {
	if bin := c.bin(); bin != "" {
		return bin, fileutil.FileExists(bin)
	}
	return launcher.LookPath()
}

func (c *Chrome) bin() string {
	if c.Bin != "" {
		return c.Bin
	}
	return os.Getenv("ROD_BROWSER_BIN")
}

func (c *Chrome) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New().Headless(true)
	if bin := c.bin(); bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI runners lack the namespaces the sandbox needs.
	if c.NoSandbox || os.Getenv("CI") == "true" || c.bin() != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	if c.Logger != nil {
		c.Logger.Debug("browser started", zap.String("control_url", u), zap.Int("pid", l.PID()))
	}
	c.launcher = l
	c.browser = browser
	return browser, nil
}

func (c *Chrome) Compile(ctx context.Context, src Source) ([]byte, error) {
	fail := func(err error) *ToolchainError {
		return &ToolchainError{Tool: "chrome", Source: src.Name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(err)
	}

	browser, err := c.ensureBrowser()
	if err != nil {
		tErr := fail(err)
		tErr.Missing = true
		return nil, tErr
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(string(src.Data), "html")
	if err != nil {
		return nil, fail(err)
	}
	defer cleanup()

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	pdf, err := c.print(ctx, browser, tmpPath, src.MarginMM)
	if err != nil {
		tErr := fail(err)
		if timedOut(ctx) {
			tErr.Timeout = true
			tErr.Err = fmt.Errorf("after %s", effectiveTimeout(c.Timeout))
		}
		return nil, tErr
	}
	return pdf, nil
}

func (c *Chrome) print(ctx context.Context, browser *rod.Browser, path string, marginMM float64) ([]byte, error) {
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}

	reader, err := page.PDF(printOptions(marginMM))
	if err != nil {
		return nil, fmt.Errorf("printing: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

// printOptions builds A4 print settings. CSS @page rules still win when the
// stylesheet declares them.
func printOptions(marginMM float64) *proto.PagePrintToPDF {
	margin := marginMM / mmPerInch
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(a4WidthInches),
		PaperHeight:       floatPtr(a4HeightInches),
		MarginTop:         floatPtr(margin),
		MarginBottom:      floatPtr(margin),
		MarginLeft:        floatPtr(margin),
		MarginRight:       floatPtr(margin),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// Close shuts the browser down and kills its process group.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	if pid := c.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	c.launcher.Kill()
	c.browser = nil
	c.launcher = nil
	return err
}

var _ Compiler = (*Chrome)(nil)
