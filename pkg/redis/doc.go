// Package redis opens go-redis clients for the Redis-backed session
// store. It validates the connection URL, pings before returning, and
// retries startup with linear backoff so a briefly unavailable Redis
// does not kill the app.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//	    return err
//	}
//	store := query.NewRedis[authapi.SessionRecord](client)
//
// Shutdown returns a hook compatible with authfold.WithShutdownHook.
package redis
