package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/barnybug/powermate/lib/cstruct"
	"github.com/barnybug/powermate/pubsub"
	"github.com/barnybug/powermate/services"
	"github.com/barnybug/powermate/services/powermate"
	"github.com/pkg/errors"
)

var (
	jsonLogs   = flag.Bool("json-logs", false, "log as json")
	jsonOutput = flag.Bool("json", false, "print results as json")
	remote     = flag.Bool("remote", false, "size: ask the running service instead")
	timeout    = flag.Duration("timeout", 5*time.Second, "time to wait for query answers")
)

func registerServices() {
	// register available services
	services.Register(&powermate.Service{})
}

func usage() {
	fmt.Println("Usage: powermate [OPTIONS] COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   run     [service]       Run a service (default powermate)")
	fmt.Println("   size                    Print the input event record size (-remote: from the service)")
	fmt.Println("   status                  Get service status")
	fmt.Println("   query   verb [args]     Query services")
	fmt.Println("   listen  [topic]         Print events from the bus")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}

func fmtFatalf(format string, v ...interface{}) {
	fmt.Printf(format, v...)
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ps := flag.Args()[1:]
	// ignore anything after '--'
	for i := range ps {
		if ps[i] == "--" {
			ps = ps[0:i]
			break
		}
	}

	services.SetupLogging(*jsonLogs)
	defer services.Shutdown()

	command := flag.Args()[0]
	switch command {
	default:
		usage()
	case "size":
		if *remote {
			rpc("powermate/size")
		} else {
			size()
		}
	case "run":
		if len(ps) == 0 {
			ps = []string{"powermate"}
		}
		service(ps)
	case "status":
		rpc("powermate/status")
	case "query":
		if len(ps) == 0 {
			usage()
			return
		}
		query(ps[0], ps[1:])
	case "listen":
		listen(ps)
	}
}

func size() {
	r := cstruct.StructSize()
	if *jsonOutput {
		b, _ := json.Marshal(r)
		fmt.Println(string(b))
		return
	}
	fmt.Println(r)
}

func connect(name string) {
	if err := services.Setup(name); err != nil {
		fmtFatalf("error: %s\n", err)
	}
}

// Start builtin services
func service(ss []string) {
	connect("run")
	registerServices()
	services.Launch(ss)
}

func query(verb string, args []string) {
	connect("query")
	q := strings.TrimSpace(verb + " " + strings.Join(args, " "))
	n := 0
	for ev := range services.QueryChannel(q, *timeout) {
		printAnswer(ev)
		n += 1
	}
	if n == 0 {
		fmt.Println("No response")
	}
}

// rpc asks a single service and waits for its one answer.
func rpc(q string) {
	connect("rpc")
	ev, err := services.RPC(q, *timeout)
	if errors.Is(err, services.ErrTimeout) {
		fmtFatalf("No response from %s within %s\n", q, *timeout)
	} else if err != nil {
		fmtFatalf("error: %s\n", err)
	}
	printAnswer(ev)
}

func printAnswer(ev *pubsub.Event) {
	if *jsonOutput {
		b, _ := json.Marshal(ev.Fields["json"])
		fmt.Println(string(b))
		return
	}
	source := ev.Source()
	message := ev.StringField("message")
	if strings.Contains(message, "\n") {
		fmt.Printf("\x1b[32;1m%s\x1b[0m\n%s\n", source, message)
	} else {
		fmt.Printf("\x1b[32;1m%s\x1b[0m %s\n", source, message)
	}
}

func listen(topics []string) {
	connect("listen")
	var matchers []pubsub.Topic
	for _, t := range topics {
		matchers = append(matchers, pubsub.Prefix(t))
	}
	if len(matchers) == 0 {
		matchers = append(matchers, pubsub.All())
	}
	for ev := range services.Subscriber.Subscribe(matchers...) {
		fmt.Println(ev)
	}
}
