package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/extract"
	"github.com/AlfredBerg/jobdigest/internal/js"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type BrowserOptions struct {
	// Bin is the Chromium binary. When empty rod looks one up or downloads it.
	Bin      string
	Headless bool
}

// Browser is a Source backed by one headless Chromium tab that is reused for every board.
type Browser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	closeOnce sync.Once
	closeErr  error
}

func NewBrowser(ctx context.Context, opts BrowserOptions) (*Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(true)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	//Don't download files in the browser, e.g. pdf files
	_ = proto.BrowserSetDownloadBehavior{
		Behavior:         proto.BrowserSetDownloadBehaviorBehaviorDeny,
		BrowserContextID: browser.BrowserContextID,
	}.Call(browser)

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	//Dismiss alerts so they can't block evaluation
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		_ = proto.PageHandleJavaScriptDialog{Accept: false}.Call(page)
	})()

	return &Browser{launcher: l, browser: browser, page: page}, nil
}

// Anchors navigates the shared tab to target, waits for DOMContentLoaded and collects the anchors.
func (b *Browser) Anchors(ctx context.Context, target string, timeout time.Duration) ([]extract.Anchor, error) {
	page := b.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", target, err)
	}
	wait()
	if err := page.GetContext().Err(); err != nil {
		return nil, fmt.Errorf("wait for %s to load: %w", target, err)
	}

	res, err := page.Eval(js.COLLECT_ANCHORS)
	if err != nil {
		return nil, fmt.Errorf("collect anchors: %w", err)
	}

	var anchors []extract.Anchor
	if err := res.Value.Unmarshal(&anchors); err != nil {
		return nil, fmt.Errorf("decode anchors: %w", err)
	}
	return anchors, nil
}

func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.browser.Close()
		b.launcher.Cleanup()
	})
	return b.closeErr
}
