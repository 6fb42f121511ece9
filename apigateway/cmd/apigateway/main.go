package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/hashicorp/consul/api"

	"github.com/ichigozero/taskguard/apigateway"
	authclient "github.com/ichigozero/taskguard/authsvc/client"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	taskclient "github.com/ichigozero/taskguard/tasksvc/client"
	userclient "github.com/ichigozero/taskguard/usersvc/client"
)

func main() {
	var (
		httpAddr     = flag.String("http.addr", ":8080", "Address for HTTP (JSON) server")
		consulAddr   = flag.String("consul.addr", "", "Consul agent address")
		serviceName  = flag.String("service.name", "taskguard", "Consul name of the backend instances")
		tokenSecret  = flag.String("token.secret", os.Getenv("SECRET_KEY"), "token signing secret shared with the backend")
		tokenAlg     = flag.String("token.algorithm", authservice.DefaultAlgorithm, "token signing algorithm")
		retryMax     = flag.Int("retry.max", 3, "per-request retries to different instances")
		retryTimeout = flag.Duration("retry.timeout", 500*time.Millisecond, "per-request timeout, including retries")
	)
	flag.Parse()

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	// Tokens are checked here too so requests without a valid one never
	// reach the backend.
	tokenizer, err := authservice.NewTokenizer(authservice.Config{
		Secret:    []byte(*tokenSecret),
		Algorithm: *tokenAlg,
	})
	if err != nil {
		logger.Log("err", err)
		os.Exit(2)
	}

	var instancer *consulsd.Instancer
	{
		consulConfig := api.DefaultConfig()
		if len(*consulAddr) > 0 {
			consulConfig.Address = *consulAddr
		}

		consulClient, err := api.NewClient(consulConfig)
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}

		client := consulsd.NewClient(consulClient)
		instancer = consulsd.NewInstancer(client, logger, *serviceName, []string{}, true)
		defer instancer.Stop()
	}

	authEndpoints, _ := authclient.New(instancer, logger, *retryMax, *retryTimeout)
	userEndpoints, _ := userclient.New(instancer, logger, *retryMax, *retryTimeout)
	taskEndpoints, _ := taskclient.New(instancer, logger, *retryMax, *retryTimeout)

	h := apigateway.NewHandler(authEndpoints, userEndpoints, taskEndpoints, tokenizer, logger)

	// Interrupt handler.
	errc := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	// HTTP transport.
	go func() {
		logger.Log("transport", "HTTP", "addr", *httpAddr)
		errc <- http.ListenAndServe(*httpAddr, h)
	}()

	// Run!
	logger.Log("exit", <-errc)
}
