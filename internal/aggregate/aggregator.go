package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// Comment collection bounds: the most recent videos scanned and the
// comments fetched per video.
const (
	MaxVideos           = 5
	MaxCommentsPerVideo = 50
)

// ChannelSource is the mandatory collaborator: identity resolution,
// channel metadata and the comment corpus.
type ChannelSource interface {
	ResolveChannelID(ctx context.Context, query string) (string, error)
	Channel(ctx context.Context, channelID string) (*model.ChannelInfo, error)
	RecentVideoIDs(ctx context.Context, channelID string, max int) ([]string, error)
	Comments(ctx context.Context, videoID string, max int) ([]string, error)
}

// EncyclopediaSource reports a creator's encyclopedia presence.
type EncyclopediaSource interface {
	PageInfo(ctx context.Context, name string) (model.WikipediaInfo, error)
}

// NewsSource returns news mentions for a creator.
type NewsSource interface {
	Articles(ctx context.Context, query string) ([]model.NewsArticle, error)
}

// DiscussionSource returns social discussion threads for a creator.
type DiscussionSource interface {
	Posts(ctx context.Context, query string) ([]model.RedditPost, error)
}

// IdentityCache maps raw identifiers to resolved channel IDs. Implementations
// must be safe for concurrent use; the aggregator holds no state of its own.
type IdentityCache interface {
	GetChannelID(ctx context.Context, identifier string) (string, bool)
	SetChannelID(ctx context.Context, identifier, channelID string)
}

// Aggregator resolves a creator's identity and gathers all source signals
// concurrently into a single ChannelSignal. Source failures are isolated:
// Wikipedia, news, discussion and comment collection degrade to empty
// values, and only a failed identity resolution (or missing channel
// metadata) fails the whole call.
type Aggregator struct {
	channels ChannelSource
	wiki     EncyclopediaSource
	news     NewsSource
	social   DiscussionSource
	ids      IdentityCache

	sourceTimeout   time.Duration
	logger          zerolog.Logger
	onSourceFailure func(source string)
}

// New creates an aggregator. onSourceFailure may be nil; when set it is
// invoked once per degraded source call (used for metrics).
func New(
	channels ChannelSource,
	wiki EncyclopediaSource,
	news NewsSource,
	social DiscussionSource,
	ids IdentityCache,
	sourceTimeout time.Duration,
	logger zerolog.Logger,
	onSourceFailure func(source string),
) *Aggregator {
	if onSourceFailure == nil {
		onSourceFailure = func(string) {}
	}
	return &Aggregator{
		channels:        channels,
		wiki:            wiki,
		news:            news,
		social:          social,
		ids:             ids,
		sourceTimeout:   sourceTimeout,
		logger:          logger,
		onSourceFailure: onSourceFailure,
	}
}

// Resolve maps an identifier to the canonical channel ID, consulting the
// identity cache first.
func (a *Aggregator) Resolve(ctx context.Context, identifier string) (string, error) {
	if id, ok := a.ids.GetChannelID(ctx, identifier); ok {
		return id, nil
	}

	id, err := a.channels.ResolveChannelID(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrRateLimited) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", model.ErrIdentityNotFound, err)
	}

	a.ids.SetChannelID(ctx, identifier, id)
	return id, nil
}

// Aggregate builds the unified signal for one scoring pass. Each goroutine
// writes into a disjoint field of the signal, so no locking is needed.
func (a *Aggregator) Aggregate(ctx context.Context, identifier string) (*model.ChannelSignal, error) {
	channelID, err := a.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	info, err := a.channels.Channel(ctx, channelID)
	if err != nil {
		if errors.Is(err, model.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: channel metadata: %v", model.ErrIdentityNotFound, err)
	}

	sig := &model.ChannelSignal{
		Channel:      *info,
		Comments:     []string{},
		NewsArticles: []model.NewsArticle{},
		RedditPosts:  []model.RedditPost{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wiki, err := a.fetchWikipedia(gctx, info.Title)
		if err != nil {
			a.degrade("wikipedia", channelID, err)
			return nil
		}
		sig.Wikipedia = wiki
		return nil
	})

	g.Go(func() error {
		articles, err := a.fetchNews(gctx, info.Title)
		if err != nil {
			a.degrade("news", channelID, err)
			return nil
		}
		sig.NewsArticles = articles
		return nil
	})

	g.Go(func() error {
		posts, err := a.fetchSocial(gctx, info.Title)
		if err != nil {
			a.degrade("reddit", channelID, err)
			return nil
		}
		sig.RedditPosts = posts
		return nil
	})

	g.Go(func() error {
		sig.Comments = a.collectComments(gctx, channelID)
		return nil
	})

	// Goroutines swallow their own errors; Wait only orders completion.
	_ = g.Wait()

	return sig, nil
}

func (a *Aggregator) fetchWikipedia(ctx context.Context, name string) (model.WikipediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()
	return a.wiki.PageInfo(ctx, name)
}

func (a *Aggregator) fetchNews(ctx context.Context, name string) ([]model.NewsArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()
	return a.news.Articles(ctx, name)
}

func (a *Aggregator) fetchSocial(ctx context.Context, name string) ([]model.RedditPost, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()
	return a.social.Posts(ctx, name)
}

// collectComments scans up to MaxVideos recent videos and gathers up to
// MaxCommentsPerVideo comments from each. A failed video is skipped, not
// retried, and never fails the batch. One deadline covers the video
// listing and every comment page, so a stalling endpoint cannot stack
// per-call timeouts.
func (a *Aggregator) collectComments(ctx context.Context, channelID string) []string {
	ctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	videoIDs, err := a.channels.RecentVideoIDs(ctx, channelID, MaxVideos)
	if err != nil {
		a.degrade("videos", channelID, err)
		return []string{}
	}

	comments := []string{}
	for _, videoID := range videoIDs {
		if ctx.Err() != nil {
			a.degrade("comments", channelID, ctx.Err())
			break
		}
		batch, err := a.channels.Comments(ctx, videoID, MaxCommentsPerVideo)
		if err != nil {
			a.degrade("comments", channelID, err)
			continue
		}
		comments = append(comments, batch...)
	}
	return comments
}

func (a *Aggregator) degrade(src, channelID string, err error) {
	a.onSourceFailure(src)
	a.logger.Warn().
		Err(err).
		Str("source", src).
		Str("channel_id", channelID).
		Msg("aggregate: source degraded to empty")
}
