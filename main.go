package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/model-hub/internal/config"
	"github.com/any-hub/model-hub/internal/fetch"
	"github.com/any-hub/model-hub/internal/logging"
	"github.com/any-hub/model-hub/internal/models"
	"github.com/any-hub/model-hub/internal/server"
	"github.com/any-hub/model-hub/internal/server/routes"
	"github.com/any-hub/model-hub/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	list        bool
	ensure      string
	repo        string
	file        string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["models"] = config.ModelNames(cfg.Models)
		fields["source"] = cfg.Global.Source
		fields["auth_mode"] = cfg.Global.AuthMode()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	catalog, err := server.NewCatalog(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "构建模型清单失败: %v\n", err)
		return 1
	}

	fetcher, err := buildFetcher(cfg.Global, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化下载 source 失败: %v\n", err)
		return 1
	}

	// 启动顺序：配置 → 日志 → 下载 source → 缓存目录 → CLI 动作或 Fiber server。
	manager, err := models.NewManager(cfg.Global.StoragePath, fetcher, models.Options{
		Logger:      logger,
		ArtifactExt: cfg.Global.ArtifactExt,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	switch {
	case opts.list:
		return runList(manager)
	case opts.ensure != "":
		return runEnsure(manager, catalog.Resolve(opts.ensure, opts.repo, opts.file))
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["models"] = config.ModelNames(cfg.Models)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["storage_path"] = manager.Root()
	fields["auth_mode"] = cfg.Global.AuthMode()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, manager, catalog, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildFetcher 构建配置选用的下载 source。source 未注册时仅记录告警并返回 nil，
// 之后的缓存未命中都会按“下载能力不可用”降级。
func buildFetcher(g config.GlobalConfig, logger *logrus.Logger) (fetch.Fetcher, error) {
	opts := fetch.Options{
		Endpoint:  g.Endpoint,
		Revision:  g.Revision,
		Token:     g.Token,
		Timeout:   g.UpstreamTimeout.DurationValue(),
		UserAgent: "model-hub/" + version.Version,
	}
	if g.Proxy != "" {
		proxyURL, err := url.Parse(g.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		opts.Proxy = proxyURL
	}

	fetcher, err := fetch.New(g.Source, opts)
	if errors.Is(err, fetch.ErrUnavailable) {
		logger.WithFields(logrus.Fields{
			"action":     "source_init",
			"source":     g.Source,
			"registered": fetch.Kinds(),
		}).Warn(err.Error())
		return nil, nil
	}
	return fetcher, err
}

func runList(manager *models.Manager) int {
	for _, name := range manager.List() {
		fmt.Fprintln(stdOut, name)
	}
	return 0
}

func runEnsure(manager *models.Manager, ref models.Reference) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path, ok := manager.Ensure(ctx, ref)
	if !ok {
		fmt.Fprintf(stdErr, "模型不可用: %s\n", ref.Name)
		return 1
	}
	fmt.Fprintln(stdOut, path)
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("model-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts cliOptions
	var configFlag string

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 MODEL_HUB_CONFIG 覆盖）")
	fs.BoolVar(&opts.checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	fs.BoolVar(&opts.list, "list", false, "列出缓存目录中的模型后退出")
	fs.StringVar(&opts.ensure, "ensure", "", "确保指定逻辑名的模型存在于本地，输出其路径后退出")
	fs.StringVar(&opts.repo, "repo", "", "配合 --ensure 覆盖清单中的远端仓库")
	fs.StringVar(&opts.file, "file", "", "配合 --ensure 覆盖清单中的远端文件名")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}
	if (opts.repo != "" || opts.file != "") && opts.ensure == "" {
		return cliOptions{}, errors.New("--repo/--file 需要配合 --ensure 使用")
	}

	path := os.Getenv("MODEL_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}
	opts.configPath = path

	return opts, nil
}

func startHTTPServer(cfg *config.Config, manager *models.Manager, catalog *server.Catalog, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Resolver:   manager,
		Catalog:    catalog,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterSourceRoutes(app, cfg.Global.Source)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
