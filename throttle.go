package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimit             = 30
	cooldown              = time.Minute
	maxConcurrentRequests = 2
)

var limiter = rate.NewLimiter(rate.Every(cooldown/rateLimit), 1)

var concurrentReqs = make(chan struct{}, maxConcurrentRequests)

func init() {
	for i := 0; i < maxConcurrentRequests; i++ {
		concurrentReqs <- struct{}{}
	}
}

// GetToken blocks until a mirror-request slot is free and returns its release.
func GetToken() func() {
	<-concurrentReqs
	return func() {
		concurrentReqs <- struct{}{}
	}
}

// Throttle paces mirror requests to rateLimit per cooldown window.
func Throttle() {
	if err := limiter.Wait(context.Background()); err != nil {
		panic(err)
	}
}
