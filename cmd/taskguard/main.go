package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/hashicorp/consul/api"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/twinj/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"

	"github.com/ichigozero/taskguard/apigateway"
	"github.com/ichigozero/taskguard/authsvc/pkg/authendpoint"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/credential"
	"github.com/ichigozero/taskguard/guard"
	storegorm "github.com/ichigozero/taskguard/storage/gorm"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskservice"
	"github.com/ichigozero/taskguard/usersvc/pkg/userendpoint"
	"github.com/ichigozero/taskguard/usersvc/pkg/userservice"
)

// serviceName is the name instances register under in Consul.
const serviceName = "taskguard"

func main() {
	cfg, err := parseConfig(os.Args[1:], os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	if err != nil {
		logger.Log("during", "config", "err", err)
		os.Exit(2)
	}

	var db *libgorm.DB
	{
		if cfg.DatabaseURL != "" {
			db, err = libgorm.Open(postgres.Open(cfg.DatabaseURL), &libgorm.Config{})
		} else {
			db, err = libgorm.Open(sqlite.Open(cfg.SQLitePath), &libgorm.Config{})
		}
		if err != nil {
			logger.Log("during", "Open", "err", err)
			os.Exit(1)
		}
		if cfg.DatabaseURL == "" {
			// SQLite allows a single writer.
			sqlDB, err := db.DB()
			if err != nil {
				logger.Log("during", "Open", "err", err)
				os.Exit(1)
			}
			sqlDB.SetMaxOpenConns(1)
		}
		if err := storegorm.Migrate(db); err != nil {
			logger.Log("during", "Migrate", "err", err)
			os.Exit(1)
		}
	}

	store := storegorm.NewStore(db)
	hasher := credential.Bcrypt{Cost: cfg.BcryptCost}

	creds, err := credential.NewStore(store, hasher)
	if err != nil {
		logger.Log("err", err)
		os.Exit(1)
	}

	tokenizer, err := authservice.NewTokenizer(cfg.Token)
	if err != nil {
		logger.Log("during", "config", "err", err)
		os.Exit(2)
	}

	g := guard.New(store, hasher)

	fieldKeys := []string{"method"}
	counter := func(subsystem string) *kitprometheus.Counter {
		return kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "api",
			Subsystem: subsystem,
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
	}
	latency := func(subsystem string) *kitprometheus.Summary {
		return kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "api",
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)
	}

	var (
		authService = authservice.New(g, creds, tokenizer, log.With(logger, "service", "auth"), counter("auth_service"), latency("auth_service"))
		userService = userservice.New(store, g, log.With(logger, "service", "user"), counter("user_service"), latency("user_service"))
		taskService = taskservice.New(store, g, log.With(logger, "service", "task"), counter("task_service"), latency("task_service"))
	)

	handler := apigateway.NewHandler(
		authendpoint.New(authService, logger),
		userendpoint.New(userService, logger),
		taskendpoint.New(taskService, logger),
		tokenizer,
		logger,
	)

	var registrar *consulsd.Registrar
	if cfg.ConsulAddr != "" {
		consulConfig := api.DefaultConfig()
		consulConfig.Address = cfg.ConsulAddr
		consulClient, err := api.NewClient(consulConfig)
		if err != nil {
			logger.Log("during", "consul", "err", err)
			os.Exit(1)
		}

		host, port, err := net.SplitHostPort(cfg.HTTPAddr)
		if err != nil {
			logger.Log("during", "consul", "err", err)
			os.Exit(1)
		}
		if host == "" {
			host = "localhost"
		}

		p, _ := strconv.Atoi(port)
		asr := &api.AgentServiceRegistration{
			ID:      uuid.NewV4().String(),
			Name:    serviceName,
			Address: host,
			Port:    p,
			Check: &api.AgentServiceCheck{
				HTTP:     "http://" + net.JoinHostPort(host, port) + "/metrics",
				Interval: "10s",
				Timeout:  "1s",
			},
		}

		registrar = consulsd.NewRegistrar(consulsd.NewClient(consulClient), asr, logger)
		registrar.Register()
		defer registrar.Deregister()
	}

	var gr group.Group
	{
		httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			if registrar != nil {
				registrar.Deregister()
			}
			os.Exit(1)
		}
		gr.Add(func() error {
			logger.Log("transport", "HTTP", "addr", cfg.HTTPAddr)
			return http.Serve(httpListener, handler)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		gr.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", gr.Run())
}
