package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"blogger_movie_post_bot/bot"
	"blogger_movie_post_bot/post"
	"blogger_movie_post_bot/publisher"
	"blogger_movie_post_bot/template"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	envPath := flag.String("env", ".env", "path to .env file (optional)")
	templatePath := flag.String("template", "", "path to the post template (overrides config)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	// Missing .env is fine; everything can come from config.json or the
	// real environment.
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := publisher.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tmpl, err := loadTemplate(*templatePath, cfg.TemplatePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	pub, err := publisher.New(cfg, nil, verbose, log.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	agent, err := buildAgent(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	b, err := bot.New(token, tmpl, pub, agent, cfg.ServerAddr, verbose, log.Default())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("starting movie post bot, blog=%s", pub.BlogID())
	if err := b.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadTemplate(flagPath, cfgPath string) (*template.Template, error) {
	path := flagPath
	if path == "" {
		path = cfgPath
	}
	if path == "" {
		return template.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.Parse(string(data))
}

func buildAgent(cfg publisher.Config) (*post.Agent, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, nil
	}
	settings := &post.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "openai":
		llm, err := post.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, err
		}
		return post.NewAgent(llm)
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible interface; base_url required.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		llm, err := post.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, err
		}
		return post.NewAgent(llm)
	case "mock":
		return post.NewAgent(post.MockLLM{})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
