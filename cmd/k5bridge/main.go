package main

import (
	"context"
	"flag"
	"io"
	"net"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/env"
	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/link"
)

var (
	listenAddr = ":8050"
	bridgePath = "/radio"
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "Listen address.")
	flag.StringVar(&bridgePath, "path", bridgePath, "Websocket path.")
	env.SetupFlags()
}

// bridgeServer exposes the configured port over websocket.
type bridgeServer struct {
	conf *env.Config
}

func (s *bridgeServer) Name() string {
	return "bridge"
}

func (s *bridgeServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(bridgePath, link.BridgeHandler(func() (io.ReadWriteCloser, error) {
		return s.conf.OpenPort("")
	}))
	srv := &http.Server{Handler: mux}
	glog.Infof("bridging %s on ws://%s%s", s.conf.Port, ln.Addr(), bridgePath)
	return framework.RunWithContextCloser(ctx, srv, func() error {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func main() {
	flag.Parse()
	conf := env.NewConfig()
	if conf.Port == "" {
		glog.Exit("port required, use -port or K5_PORT")
	}
	err := framework.NewRunner().
		HandleSignals().
		Go(&bridgeServer{conf: conf}).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
