package services

import (
	"sort"
	"strings"
	"sync"

	"github.com/barnybug/powermate/pubsub"
)

type Question struct {
	Verb string
	Args string
	From string
}

type Answer struct {
	Text string
	Json interface{}
}

type QueryHandler func(q Question) Answer

type QueryHandlers map[string]QueryHandler

type Queryable interface {
	ID() string
	QueryHandlers() QueryHandlers
}

// TextHandler adapts a string return value to an Answer
func TextHandler(fn func(q Question) string) QueryHandler {
	return func(q Question) Answer {
		text := fn(q)
		return Answer{Text: text}
	}
}

// StaticHandler just returns a hardcoded string - useful for "help"
func StaticHandler(msg string) QueryHandler {
	return func(_ Question) Answer {
		return Answer{Text: msg}
	}
}

// HelpHandler lists the verbs a service answers.
func HelpHandler(handlers QueryHandlers) QueryHandler {
	return func(_ Question) Answer {
		var verbs []string
		for verb := range handlers {
			verbs = append(verbs, verb)
		}
		sort.Strings(verbs)
		return Answer{Text: strings.Join(verbs, " ")}
	}
}

func sendAnswer(request *pubsub.Event, source string, answer Answer) {
	fields := pubsub.Fields{
		"source": source,
		"target": request.StringField("source"),
	}
	if answer.Text != "" {
		fields["message"] = answer.Text
	}
	if answer.Json != nil {
		fields["json"] = answer.Json
	}

	remote := request.StringField("remote")
	if remote != "" {
		fields["remote"] = remote
	}

	topic := "alert"
	reply_to := request.StringField("reply_to")
	if reply_to != "" {
		topic = reply_to
	}

	response := pubsub.NewEvent(topic, fields)
	Publisher.Emit(response)
}

// parseQuery splits "[service/]verb args..." into the service limit and
// the question.
func parseQuery(ev *pubsub.Event) (limit string, q Question) {
	parts := strings.SplitN(ev.StringField("query"), " ", 2)
	if len(parts) > 1 {
		q.Args = parts[1]
	}
	first := strings.ToLower(parts[0])
	ps := strings.SplitN(first, "/", 2)
	if len(ps) == 2 {
		limit = ps[0]
	}
	q.Verb = ps[len(ps)-1]
	q.From = ev.StringField("source") + ":" + ev.StringField("remote")
	return limit, q
}

func handleQuery(ev *pubsub.Event, queryables []Queryable, wg *sync.WaitGroup) {
	limit, q := parseQuery(ev)
	for _, service := range queryables {
		if limit != "" && limit != service.ID() {
			continue
		}
		if handler, ok := service.QueryHandlers()[q.Verb]; ok {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				a := handler(q)
				sendAnswer(ev, id, a)
			}(service.ID())
		}
	}
}

// QuerySubscriber answers queries for the enabled Queryable services until
// the subscription closes.
func QuerySubscriber() {
	var queryables []Queryable
	for _, service := range enabled {
		if qs, ok := service.(Queryable); ok {
			queryables = append(queryables, qs)
		}
	}
	if len(queryables) == 0 {
		// no point running if no Queryable services
		return
	}

	var wg sync.WaitGroup
	for ev := range Subscriber.Subscribe(pubsub.Exact("query")) {
		handleQuery(ev, queryables, &wg)
	}
	wg.Wait()
}
