package browser

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// autoScrollJS keeps scrolling until the page height settles, so lazy
// listings finish loading before capture. It must be an invocation
// expression: evaluating a bare function literal would never run it.
const autoScrollJS = `
(async () => {
  const sleep = (ms) => new Promise(r => setTimeout(r, ms));
  let last = 0; let same = 0;
  for (let i = 0; i < 20; i++) {
    window.scrollTo(0, document.body.scrollHeight);
    await sleep(400);
    const h = document.body.scrollHeight;
    if (h === last) { same++; } else { same = 0; }
    last = h;
    if (same >= 3) break;
  }
})()`

// journalItemsJS resolves each item icon to its closest anchor and a nearby
// name label. Walking up through getRootNode().host crosses shadow DOM
// boundaries.
const journalItemsJS = `
(() => {
  function closestAnchor(node) {
    while (node) {
      if (node.tagName === 'A' && node.getAttribute('href')) return node;
      node = node.parentElement || (node.getRootNode && node.getRootNode().host) || null;
    }
    return null;
  }
  const out = [];
  for (const el of document.querySelectorAll("img[src*='assets/live/items/icons']")) {
    const a = closestAnchor(el);
    const href = a ? a.getAttribute('href') : '';
    let name = '';
    const root = (a || el).closest('div,li,article,section') || (a || el).parentElement;
    if (root) {
      const cand = root.querySelector('.name, h3, h4, h2, [title]');
      if (cand) name = (cand.textContent || '').trim() || cand.getAttribute('title') || '';
    }
    out.push({ name: name, image: el.getAttribute('src') || '', href: href });
  }
  return out;
})()`

// JournalItem is one discovered listing entry: display name, icon source
// and the detail-page link.
type JournalItem struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Href  string `json:"href"`
}

// CapturedResponse is one JSON payload observed while a page loaded.
type CapturedResponse struct {
	URL  string
	Body json.RawMessage
}

// Session owns one browser process for the duration of a crawl; every page
// opens as a tab of that browser. Close releases it regardless of per-page
// failures.
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	pageTimeout   time.Duration
}

func NewSession(headless bool, pageTimeout time.Duration) *Session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		pageTimeout:   pageTimeout,
	}
}

func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

func (s *Session) page(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	timed, timedCancel := context.WithTimeout(tabCtx, s.pageTimeout)
	stop := context.AfterFunc(ctx, timedCancel)
	return timed, func() {
		stop()
		timedCancel()
		tabCancel()
	}
}

// HTML navigates to url, auto-scrolls to trigger lazy loading, and returns
// the rendered markup.
func (s *Session) HTML(ctx context.Context, url string) (string, error) {
	tab, cancel := s.page(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.Evaluate(autoScrollJS, nil, awaitPromise),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// JournalItems discovers the item anchors on a journal listing page,
// de-duplicated by href.
func (s *Session) JournalItems(ctx context.Context, url string) ([]JournalItem, error) {
	tab, cancel := s.page(ctx)
	defer cancel()

	var items []JournalItem
	err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.Evaluate(autoScrollJS, nil, awaitPromise),
		chromedp.Evaluate(journalItemsJS, &items),
	)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]JournalItem, 0, len(items))
	for _, item := range items {
		if item.Href == "" || item.Name == "" {
			continue
		}
		if _, ok := seen[item.Href]; ok {
			continue
		}
		seen[item.Href] = struct{}{}
		out = append(out, item)
	}
	return out, nil
}

// CaptureJSON loads url and collects every JSON response the page fetches
// while settling, for the last-resort live fallback.
func (s *Session) CaptureJSON(ctx context.Context, url string, settle time.Duration) ([]CapturedResponse, error) {
	tab, cancel := s.page(ctx)
	defer cancel()

	type hit struct {
		requestID network.RequestID
		url       string
	}
	var mu sync.Mutex
	hits := make([]hit, 0)
	chromedp.ListenTarget(tab, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if strings.Contains(resp.Response.MimeType, "application/json") {
			mu.Lock()
			hits = append(hits, hit{requestID: resp.RequestID, url: resp.Response.URL})
			mu.Unlock()
		}
	})

	err := chromedp.Run(tab,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
	)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	snapshot := append([]hit(nil), hits...)
	mu.Unlock()

	captured := make([]CapturedResponse, 0, len(snapshot))
	err = chromedp.Run(tab, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, h := range snapshot {
			body, err := network.GetResponseBody(h.requestID).Do(ctx)
			if err != nil {
				continue
			}
			if !json.Valid(body) {
				continue
			}
			captured = append(captured, CapturedResponse{URL: h.url, Body: json.RawMessage(body)})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return captured, nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
