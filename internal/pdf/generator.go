package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4，单位英寸。
var (
	paperWidth  = 8.27
	paperHeight = 11.69
	noMargin    = 0.0
)

const fontsReadyScript = `() => document.fonts && document.fonts.ready
  ? Promise.race([document.fonts.ready.then(() => true), new Promise(r => setTimeout(() => r(true), 3000))])
  : true`

// Generator 复用同一个无头 Chromium，每次打印开一个新标签页。
// 浏览器出错后丢弃，下次打印重新拉起。
type Generator struct {
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	launches int
}

func NewGenerator(timeout time.Duration, logger *slog.Logger) *Generator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{timeout: timeout, logger: logger}
}

func (g *Generator) ensureBrowser() (*rod.Browser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.browser != nil {
		return g.browser, nil
	}

	l := launcher.New().Headless(true).NoSandbox(true)
	if bin, ok := launcher.LookPath(); ok {
		l = l.Bin(bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	g.launch, g.browser = l, b
	g.launches++
	g.logger.Info("chromium started", slog.Int("launches", g.launches))
	return b, nil
}

// reset 关闭出错的浏览器实例。
func (g *Generator) reset(b *rod.Browser) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.browser != b {
		return
	}
	_ = g.browser.Close()
	g.launch.Cleanup()
	g.browser, g.launch = nil, nil
}

// Close 退出浏览器进程，worker 停止时调用。
func (g *Generator) Close() {
	g.mu.Lock()
	b := g.browser
	g.mu.Unlock()
	if b != nil {
		g.reset(b)
	}
}

// Render 载入完整 HTML，等待 #render-ready 与字体后以 print 媒体导出无边距 A4 PDF。
func (g *Generator) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	browser, err := g.ensureBrowser()
	if err != nil {
		return nil, err
	}
	data, err := g.print(browser.Context(ctx).Timeout(g.timeout), htmlContent)
	if err != nil && ctx.Err() == nil {
		// 非取消导致的失败多半是浏览器状态坏了
		g.reset(browser)
	}
	return data, err
}

func (g *Generator) print(browser *rod.Browser, htmlContent string) ([]byte, error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	if _, err := page.Element("#render-ready"); err != nil {
		return nil, fmt.Errorf("wait render signal: %w", err)
	}
	// 回退字体的度量不同，会改变分页
	if _, err := page.Eval(fontsReadyScript); err != nil {
		g.logger.Warn("fonts not confirmed ready", slog.Any("error", err))
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return nil, fmt.Errorf("emulate print media: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &paperWidth,
		PaperHeight:       &paperHeight,
		MarginTop:         &noMargin,
		MarginBottom:      &noMargin,
		MarginLeft:        &noMargin,
		MarginRight:       &noMargin,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}
