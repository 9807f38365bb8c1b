//go:build !test

/* main.go
 * The "main" method for running the bot and web server. For details see `readme.md`
 * Usage: go run . -test -serve="bot,web"
 *        go run . -import="<standings url>"
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"nfl-stats-lab/api/api"
	"nfl-stats-lab/api/feed"
	"nfl-stats-lab/api/shared"
	"nfl-stats-lab/api/store"
	"nfl-stats-lab/archive"
	"nfl-stats-lab/bot"
	"nfl-stats-lab/config"
	"nfl-stats-lab/mcptools"
	"nfl-stats-lab/scheduler"
	"nfl-stats-lab/web"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("Error loading .env file:", err)
	}

	//Flags
	testPtr := flag.Bool("test", false, "Use the test bot token instead of the main one")
	servePtr := flag.String("serve", "bot,web", "Comma separated surfaces to start: bot, web")
	importPtr := flag.String("import", "", "Standings page url. Parses the standings table, stores the teams and grades, then exits")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	st, err := store.NewStore(connectCtx, cfg.Mongo.Database, cfg.Mongo.URI, cfg.Mongo.TeamsCollection, cfg.Mongo.AnalyticsCollection)
	cancel()
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer func() {
		if err := st.Client.Disconnect(context.Background()); err != nil {
			log.Println("failed to disconnect from mongo:", err)
		}
	}()

	if *importPtr != "" {
		if err := importSheet(ctx, st, *importPtr); err != nil {
			log.Fatalf("import failed: %v", err)
		}
		return
	}

	serve, err := parseSurfaces(*servePtr)
	if err != nil {
		log.Fatalf("Invalid \"serve\" flag: %v", err)
	}

	f := feed.NewFeed(st)
	unsubscribe := f.Subscribe(func(snap shared.Snapshot) {
		log.Printf("Snapshot v%d: %d teams, %d analytics records\n", snap.Version, len(snap.Teams), len(snap.Analytics))
	})
	defer unsubscribe()

	apiPtr, err := api.NewAPI(f, cfg.Schedule.BaseWeek)
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}

	hist, err := archive.Open(cfg.Archive)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}
	defer hist.Close()

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Printf("%s stopped: %v\n", name, err)
				stop()
			}
		}()
	}

	run("feed", func() error { return f.Run(ctx) })

	var sendMessage func(string) error
	if serve.Bot {
		discordBot, err := bot.NewBot(cfg.DiscordToken(*testPtr), apiPtr, cfg.Discord.ChannelID)
		if err != nil {
			log.Fatalf("failed to initialize bot: %v", err)
		}
		if cfg.Discord.ChannelID != "" {
			sendMessage = discordBot.Announce
		}
		run("bot", func() error { return discordBot.Run(ctx) })
	}

	if serve.Web {
		mcpServer, err := mcptools.NewServer(apiPtr)
		if err != nil {
			log.Fatalf("failed to initialize mcp server: %v", err)
		}
		run("web", func() error {
			return web.Start(ctx, web.Config{
				Addr:      cfg.HTTPAddr,
				API:       apiPtr,
				Refresher: f,
				History:   hist,
				MCP:       mcptools.NewHandler(mcpServer),
				MCPAPIKey: cfg.MCPAPIKey,
			})
		})
	}

	sched, err := scheduler.NewScheduler(scheduler.Config{
		API:            apiPtr,
		Refresher:      f,
		Recorder:       hist,
		SendMessage:    sendMessage,
		Timezone:       cfg.Schedule.Timezone,
		ResyncInterval: cfg.Schedule.ResyncInterval,
	})
	if err != nil {
		log.Fatalf("failed to initialize scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	<-ctx.Done()
	log.Println("Shutting down")
	if err := sched.Stop(); err != nil {
		log.Println("failed to stop scheduler:", err)
	}
	wg.Wait()
}
