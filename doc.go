// Package geoatlas builds photo atlases: equirectangular world textures in
// which every country a user has photographed shows their latest photo,
// clipped to the country's boundary.
//
// An Engine ties the pieces together. The catalog is loaded once, the
// locator answers tap-to-country queries against it, and the compositor
// keeps the published atlas current as photos change:
//
//	cat, err := catalog.Load(data, nil)
//	if err != nil {
//		return err
//	}
//	src := fetch.Source{Fetcher: fetch.NewHTTPFetcher(nil)}
//	eng := geoatlas.New(cat, src, nil)
//	atlas, err := eng.Update(ctx, photos)
//
// The texture is atlas.Image(); eng.CountryFor and eng.CountryForPoint
// resolve taps on the map or on the globe it is wrapped around.
package geoatlas
