// Package restcache decorates a REST client with the entity cache.
//
// Reads consult the entity cache, then the fetch layer, then the wrapped
// client, and add what they fetched to the entity cache. Writes go straight
// to the wrapped client; on success the returned entity replaces the cached
// one, and deletions remove the key.
//
//	client := restcache.New(rest, entities, restcache.WithLogger(logger))
//	member, err := client.GetMember(ctx, guildID, userID)
//
// The wrapped client reports a missing remote object by returning an error
// that matches cache.ErrNotFound. With a fetch layer configured, that answer
// is remembered until the fetch TTL expires or the key is written again.
package restcache
