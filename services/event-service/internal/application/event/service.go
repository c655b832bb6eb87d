package event

import (
	"time"
)

type Service struct {
	repo       EventRepo
	categories CategoryRepo
	users      UserRepo
	stats      StatsClient
	cache      Cache
	clock      Clock
	enricher   *Enricher

	appName      string
	statsTimeout time.Duration
	ttlDetails   time.Duration
}

type Deps struct {
	Events     EventRepo
	Categories CategoryRepo
	Users      UserRepo
	Requests   RequestRepo
	Stats      StatsClient
	Cache      Cache // optional
	Clock      Clock
}

type Options struct {
	AppName      string
	StatsTimeout time.Duration
	TTLDetails   time.Duration
}

func New(d Deps, o Options) *Service {
	// Defaults if 0
	if o.StatsTimeout <= 0 {
		o.StatsTimeout = defaultStatsTimeout
	}
	if o.TTLDetails <= 0 {
		o.TTLDetails = 5 * time.Minute
	}
	if o.AppName == "" {
		o.AppName = "ewm-main-service"
	}

	return &Service{
		repo:         d.Events,
		categories:   d.Categories,
		users:        d.Users,
		stats:        d.Stats,
		cache:        d.Cache,
		clock:        d.Clock,
		enricher:     NewEnricher(d.Requests, d.Stats, d.Clock, o.StatsTimeout),
		appName:      o.AppName,
		statsTimeout: o.StatsTimeout,
		ttlDetails:   o.TTLDetails,
	}
}
