package main

import (
	"context"
	"flag"
	"log"
	"reflect"

	"github.com/robotalks/uvk5.go/pkg/env"
	"github.com/robotalks/uvk5.go/pkg/framework"
	"github.com/robotalks/uvk5.go/pkg/telemetry/msgs"
	"github.com/robotalks/uvk5.go/pkg/telemetry/mqtt"
)

var radioID string

func init() {
	flag.StringVar(&radioID, "radio", radioID, "Only show events of this radio.")
	env.SetupFlags()
}

func monitor(q *mqtt.Queue) framework.RunnableFunc {
	return func(ctx context.Context) error {
		mqtt.SubscribeEvents(q, radioID, func(id string, ev msgs.Event) {
			log.Printf("%s: [%s] %v", id, reflect.Indirect(reflect.ValueOf(ev)).Type().Name(), ev)
		})
		token := q.Connect()
		if token.Wait(); token.Error() != nil {
			return token.Error()
		}
		<-ctx.Done()
		return ctx.Err()
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := env.NewConfig()
	if conf.MQTTURL == "" {
		log.Fatalln("MQTT broker URL required, use -mqtt or K5_MQTT_URL")
	}
	q, err := mqtt.NewQueueFromURL(conf.MQTTURL)
	if err != nil {
		log.Fatalln(err)
	}
	err = framework.NewRunner().
		HandleSignals().
		Defer(q).
		Go(framework.NamedRun("monitor", monitor(q))).
		Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
