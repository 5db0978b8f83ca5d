package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/worldads/adwatch/internal/auth"
	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/internal/domain"
	"github.com/worldads/adwatch/internal/drawer"
	"github.com/worldads/adwatch/internal/feed"
	"github.com/worldads/adwatch/internal/reaction"
	"github.com/worldads/adwatch/internal/rest"
	"github.com/worldads/adwatch/internal/transport"
	"github.com/worldads/adwatch/pkg/logger"
)

// app carries the wired client stack through the command loop.
type app struct {
	api       *rest.Client
	transport *transport.Client
	session   *auth.Session
	feed      *feed.Feed
	drawer    *drawer.Session
}

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	logger.Init(env)
	log := logger.WithComponent("cli")

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	api := rest.New(cfg.API)
	tr := transport.New(cfg.WS)
	session := auth.NewSession(api)
	fd := feed.New(api, api, tr, session, feed.Options{
		DrawerOptions: drawer.Options{PageLimit: cfg.API.PageLimit},
		OnReward: func(adID string, amount int) {
			fmt.Printf("  +%d tokens earned\n", amount)
		},
	})

	a := &app{api: api, transport: tr, session: session, feed: fd}

	ctx := context.Background()
	if err := fd.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("initial feed load failed")
	}

	fmt.Println("adwatch, type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		a.dispatch(ctx, line)
	}

	a.closeDrawer()
	tr.Close()
}

func (a *app) dispatch(ctx context.Context, line string) {
	cmd, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "help":
		printHelp()
	case "login":
		a.login(ctx, args)
	case "logout":
		a.session.Logout()
		fmt.Println("logged out")
	case "ads":
		a.listAds()
	case "watch":
		a.watch(args)
	case "next":
		a.feed.Next()
		a.showActive()
	case "prev":
		a.feed.Prev()
		a.showActive()
	case "done":
		if ad := a.feed.Active(); ad != nil {
			a.feed.Complete(ad.ID)
		}
	case "open":
		a.openDrawer(ctx)
	case "close":
		a.closeDrawer()
	case "comments":
		a.listComments()
	case "more":
		a.loadMore(ctx)
	case "post":
		a.post(ctx, args)
	case "reply":
		a.reply(ctx, args)
	case "like":
		a.react(ctx, args, domain.ReactionLike)
	case "dislike":
		a.react(ctx, args, domain.ReactionDislike)
	case "fav":
		a.favorite(ctx)
	case "rewards":
		a.rewards(ctx)
	default:
		fmt.Printf("unknown command %q, try 'help'\n", cmd)
	}
}

func printHelp() {
	fmt.Print(`commands:
  login <worldId> [wallet]  log in
  logout                    drop the session
  ads                       list the feed
  watch <n>                 jump to slide n (1-based)
  next / prev               move through the feed
  done                      mark the active ad watched (video end)
  open / close              open or close the comment drawer
  comments                  show the drawer's comment tree
  more                      load the next comment page
  post <text>               post a comment
  reply <n> <text>          reply to comment n
  like <n> / dislike <n>    react to comment n
  fav                       save the active ad
  rewards                   show earned rewards
  quit
`)
}

func (a *app) login(ctx context.Context, args string) {
	worldID, wallet, _ := strings.Cut(args, " ")
	if worldID == "" {
		fmt.Println("usage: login <worldId> [wallet]")
		return
	}
	user, err := a.session.Login(ctx, worldID, strings.TrimSpace(wallet))
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	fmt.Printf("logged in as %s\n", user.WorldID)
}

func (a *app) listAds() {
	ads := a.feed.Ads()
	if len(ads) == 0 {
		fmt.Println("feed is empty")
		return
	}
	active := a.feed.Active()
	for i, ad := range ads {
		marker := " "
		if active != nil && ad.ID == active.ID {
			marker = "*"
		}
		done := ""
		if a.feed.Completed(ad.ID) {
			done = " (watched)"
		}
		fmt.Printf("%s %d. %s [%s]%s\n", marker, i+1, ad.AdsName, ad.Creative.Kind, done)
	}
}

func (a *app) watch(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		fmt.Println("usage: watch <n>")
		return
	}
	a.feed.Select(n - 1)
	a.showActive()
}

func (a *app) showActive() {
	ad := a.feed.Active()
	if ad == nil {
		fmt.Println("feed is empty")
		return
	}
	fmt.Printf("watching: %s [%s]\n", ad.AdsName, ad.Creative.Kind)
}

func (a *app) openDrawer(ctx context.Context) {
	if a.drawer != nil {
		fmt.Println("drawer already open")
		return
	}
	session, err := a.feed.OpenDrawer(ctx)
	if err != nil {
		fmt.Println("could not open drawer:", err)
		return
	}
	a.drawer = session
	a.listComments()
}

func (a *app) closeDrawer() {
	if a.drawer == nil {
		return
	}
	a.feed.CloseDrawer()
	a.drawer = nil
}

func (a *app) listComments() {
	if a.drawer == nil {
		fmt.Println("drawer is closed, use 'open'")
		return
	}
	comments := a.drawer.Comments()
	fmt.Printf("%d of %d comments\n", len(comments), a.drawer.Total())
	for i, c := range comments {
		fmt.Printf("%d. [%s] %s  (+%d/-%d, %d replies)\n",
			i+1, c.WorldID, c.Content, c.LikeCount, c.DislikeCount, c.ReplyCount)
		for _, r := range c.Replies {
			fmt.Printf("     [%s] %s\n", r.WorldID, r.Content)
		}
	}
}

func (a *app) loadMore(ctx context.Context) {
	if a.drawer == nil {
		fmt.Println("drawer is closed, use 'open'")
		return
	}
	if err := a.drawer.LoadMore(ctx); err != nil {
		fmt.Println("load more failed:", err)
		return
	}
	a.listComments()
}

func (a *app) post(ctx context.Context, text string) {
	if a.drawer == nil {
		fmt.Println("drawer is closed, use 'open'")
		return
	}
	if _, err := a.drawer.PostComment(ctx, text, nil, ""); err != nil {
		fmt.Println("post failed:", err)
		return
	}
	fmt.Println("posted")
}

func (a *app) reply(ctx context.Context, args string) {
	comment, text, ok := a.pickComment(args)
	if !ok {
		fmt.Println("usage: reply <n> <text>")
		return
	}
	if _, err := a.drawer.PostReply(ctx, comment.ID, text, nil, ""); err != nil {
		fmt.Println("reply failed:", err)
		return
	}
	fmt.Println("posted")
}

func (a *app) react(ctx context.Context, args string, kind domain.ReactionType) {
	comment, _, ok := a.pickComment(args)
	if !ok {
		fmt.Println("usage: like <n> / dislike <n>")
		return
	}

	ctrl := reaction.NewController(a.api, a.session, comment.ID, domain.TargetComment,
		comment.LikeCount, comment.DislikeCount, comment.UserReaction)
	var err error
	if kind == domain.ReactionLike {
		err = ctrl.Like(ctx)
	} else {
		err = ctrl.Dislike(ctx)
	}
	if err != nil {
		fmt.Println("reaction failed:", err)
		return
	}
	state := ctrl.State()
	fmt.Printf("+%d/-%d\n", state.LikeCount, state.DislikeCount)
}

// pickComment resolves a leading 1-based index against the drawer's
// current comment list and returns the rest of the argument string.
func (a *app) pickComment(args string) (*domain.Comment, string, bool) {
	if a.drawer == nil {
		return nil, "", false
	}
	indexArg, text, _ := strings.Cut(args, " ")
	n, err := strconv.Atoi(indexArg)
	if err != nil || n < 1 {
		return nil, "", false
	}
	comments := a.drawer.Comments()
	if n > len(comments) {
		return nil, "", false
	}
	return &comments[n-1], strings.TrimSpace(text), true
}

func (a *app) favorite(ctx context.Context) {
	ad := a.feed.Active()
	if ad == nil {
		fmt.Println("feed is empty")
		return
	}
	worldID, err := a.session.RequireWorldID()
	if err != nil {
		fmt.Println("log in first")
		return
	}
	if _, err := a.api.CreateFavorite(ctx, domain.CreateFavoriteRequest{
		WorldID:         worldID,
		AdvertisementID: ad.ID,
	}); err != nil {
		fmt.Println("save failed:", err)
		return
	}
	fmt.Println("saved")
}

func (a *app) rewards(ctx context.Context) {
	worldID, err := a.session.RequireWorldID()
	if err != nil {
		fmt.Println("log in first")
		return
	}
	rewards, err := a.api.ListUserRewards(ctx, worldID)
	if err != nil {
		fmt.Println("fetch failed:", err)
		return
	}
	total := 0
	for _, r := range rewards {
		total += r.Amount
		fmt.Printf("  %s  +%d\n", r.AdvertisementID, r.Amount)
	}
	fmt.Printf("total: %d tokens\n", total)
}
