package grpcservice

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/pprof"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/arkade-os/nftbridge/internal/config"
	interfaces "github.com/arkade-os/nftbridge/internal/interface"
	"github.com/arkade-os/nftbridge/internal/interface/grpc/handlers"
	"github.com/arkade-os/nftbridge/internal/interface/grpc/interceptors"
	"github.com/arkade-os/nftbridge/internal/telemetry"
	"github.com/arkade-os/nftbridge/pkg/macaroons"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpchealth "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	tlsKeyFile  = "key.pem"
	tlsCertFile = "cert.pem"
	tlsFolder   = "tls"

	macaroonsFolder      = "macaroons"
	macaroonsLocation    = "nftbridge"
	operatorMacaroonFile = "operator.macaroon"
)

type service struct {
	version           string
	config            Config
	appConfig         *config.Config
	server            *http.Server
	grpcServer        *grpc.Server
	healthSvc         *health.Server
	readinessSvc      *interceptors.ReadinessService
	macaroonSvc       *macaroons.Service
	appSvcStarted     atomic.Bool
	closeStreams      func()
	otelShutdown      func(context.Context) error
	pyroscopeShutdown func() error
}

func NewService(
	version string, svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	if !svcConfig.insecure() {
		if err := generateOperatorTLSKeyCert(
			svcConfig.tlsDatadir(), svcConfig.TLSExtraIPs, svcConfig.TLSExtraDomains,
		); err != nil {
			return nil, err
		}
		log.Debugf("generated TLS key pair at path: %s", svcConfig.tlsDatadir())
	}

	var macaroonSvc *macaroons.Service
	if !svcConfig.NoMacaroons {
		svc, err := macaroons.NewService(svcConfig.macaroonsDatadir(), macaroonsLocation)
		if err != nil {
			return nil, fmt.Errorf("failed to init macaroon service: %s", err)
		}
		macFile := filepath.Join(svcConfig.macaroonsDatadir(), operatorMacaroonFile)
		generated, err := svc.WriteIfMissing(macFile, appConfig.Operator)
		if err != nil {
			return nil, fmt.Errorf("failed to generate operator macaroon: %s", err)
		}
		if generated {
			log.Debugf("generated operator macaroon at path: %s", macFile)
		}
		macaroonSvc = svc
	}

	return &service{
		version:     version,
		config:      svcConfig,
		appConfig:   appConfig,
		macaroonSvc: macaroonSvc,
	}, nil
}

func (s *service) Start() error {
	if err := s.start(); err != nil {
		return err
	}
	log.Infof("started listening at %s", s.config.address())

	return s.startAppServices()
}

func (s *service) Stop() {
	s.stop()
	if s.pyroscopeShutdown != nil {
		if err := s.pyroscopeShutdown(); err != nil {
			log.Errorf("failed to shutdown pyroscope: %s", err)
		}

		log.Info("shutdown pyroscope")
	}
	if s.otelShutdown != nil {
		if err := s.otelShutdown(context.Background()); err != nil {
			log.Errorf("failed to shutdown otel: %s", err)
		}
	}
	s.appConfig.Close()
	log.Info("shutdown service")
}

func (s *service) start() error {
	tlsConfig, err := s.config.tlsConfig()
	if err != nil {
		return err
	}

	if err := s.newServer(tlsConfig, s.config.EnablePprof); err != nil {
		return err
	}

	if s.config.insecure() {
		// nolint:all
		go s.server.ListenAndServe()
	} else {
		// nolint:all
		go s.server.ListenAndServeTLS("", "")
	}

	return nil
}

func (s *service) stop() {
	if s.appSvcStarted.CompareAndSwap(true, false) {
		appSvc, _ := s.appConfig.AppService()
		if appSvc != nil {
			appSvc.Stop()
		}
		if s.readinessSvc != nil {
			s.readinessSvc.MarkAppServiceStopped()
		}
	}
	if s.healthSvc != nil {
		s.healthSvc.Shutdown()
	}
	if s.closeStreams != nil {
		s.closeStreams()
	}

	// Hard-close HTTP listeners/conns first to avoid mixed HTTP/gRPC window.
	if s.server != nil {
		_ = s.server.Close()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
}

func (s *service) startAppServices() error {
	if !s.appSvcStarted.CompareAndSwap(false, true) {
		return nil
	}

	appSvc, err := s.appConfig.AppService()
	if err != nil {
		s.appSvcStarted.Store(false)
		return fmt.Errorf("failed to create app service: %w", err)
	}
	if err := appSvc.Start(); err != nil {
		s.appSvcStarted.Store(false)
		return fmt.Errorf("failed to start app service: %w", err)
	}
	log.Info("started app service")

	if s.readinessSvc != nil {
		s.readinessSvc.MarkAppServiceStarted()
	}

	log.Infof("bridge service %s is now ready", s.version)
	return nil
}

func (s *service) newServer(tlsConfig *tls.Config, withPprof bool) error {
	ctx := context.Background()
	if s.appConfig.OtelCollectorEndpoint != "" {
		pushInteval := time.Duration(s.appConfig.OtelPushInterval) * time.Second
		otelShutdown, err := telemetry.InitOtelSDK(
			ctx, s.appConfig.OtelCollectorEndpoint, pushInteval,
		)
		if err != nil {
			return err
		}

		if s.appConfig.PyroscopeServerURL != "" {
			pyroscopeShutdown, err := telemetry.InitPyroscope(
				s.appConfig.PyroscopeServerURL,
			)
			if err != nil {
				return err
			}
			s.pyroscopeShutdown = pyroscopeShutdown
		}

		s.otelShutdown = otelShutdown
	}

	otelHandler := otelgrpc.NewServerHandler(
		otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
	)

	s.healthSvc = health.NewServer()
	s.readinessSvc = interceptors.NewReadinessService(s.healthSvc)

	grpcConfig := []grpc.ServerOption{
		interceptors.UnaryInterceptor(s.readinessSvc),
		interceptors.StreamInterceptor(s.readinessSvc),
		grpc.StatsHandler(otelHandler),
	}
	creds := insecure.NewCredentials()
	if !s.config.insecure() {
		creds = credentials.NewTLS(tlsConfig)
	}
	grpcConfig = append(grpcConfig, grpc.Creds(creds))

	grpcServer := grpc.NewServer(grpcConfig...)
	grpchealth.RegisterHealthServer(grpcServer, s.healthSvc)

	services, err := s.appConfig.HandlerServices()
	if err != nil {
		return fmt.Errorf("failed to create rest handlers: %w", err)
	}
	services.Macaroons = s.macaroonSvc
	restHandler, closeStreams, err := handlers.NewHandler(services)
	if err != nil {
		return err
	}
	s.closeStreams = closeStreams

	mux := http.NewServeMux()
	if withPprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
		mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
		mux.Handle("/debug/pprof/block", pprof.Handler("block"))
		mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
		log.Info("pprof enabled at /debug/pprof/")
	}
	mux.Handle("/", router(
		grpcServer, interceptors.HTTPMiddleware(s.readinessSvc, s.macaroonSvc, restHandler),
	))

	httpServerHandler := http.Handler(mux)
	if s.config.insecure() {
		httpServerHandler = h2c.NewHandler(httpServerHandler, &http2.Server{})
	}

	s.grpcServer = grpcServer
	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           httpServerHandler,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

func router(
	grpcServer *grpc.Server, restHandler http.Handler,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isOptionRequest(r) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.Header().Add("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			return
		}

		if isHttpRequest(r) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.Header().Add("Access-Control-Allow-Methods", "POST, GET, OPTIONS")

			restHandler.ServeHTTP(w, r)
			return
		}
		grpcServer.ServeHTTP(w, r)
	})
}

func isOptionRequest(req *http.Request) bool {
	return req.Method == http.MethodOptions
}

func isHttpRequest(req *http.Request) bool {
	return !strings.HasPrefix(req.Header.Get("Content-Type"), "application/grpc")
}
