package store

import "github.com/i474232898/surf-spot-ranking/internal/surf"

// CaliforniaSpots is the reference catalog loaded on first start.
var CaliforniaSpots = []surf.Location{
	{Name: "Huntington Beach Pier", Latitude: 33.6553, Longitude: -118.0036, Region: "Orange County", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Lower Trestles", Latitude: 33.3825, Longitude: -117.5889, Region: "Orange County", BreakType: surf.BreakPoint, Difficulty: surf.Intermediate},
	{Name: "The Wedge", Latitude: 33.5930, Longitude: -117.8820, Region: "Orange County", BreakType: surf.BreakOther, Difficulty: surf.Advanced},
	{Name: "Doheny State Beach", Latitude: 33.4608, Longitude: -117.6850, Region: "Orange County", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Malibu Surfrider Beach", Latitude: 34.0360, Longitude: -118.6780, Region: "Los Angeles", BreakType: surf.BreakPoint, Difficulty: surf.Intermediate},
	{Name: "El Porto", Latitude: 33.8990, Longitude: -118.4200, Region: "Los Angeles", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Venice Breakwater", Latitude: 33.9850, Longitude: -118.4760, Region: "Los Angeles", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Palos Verdes Cove", Latitude: 33.7600, Longitude: -118.4200, Region: "Los Angeles", BreakType: surf.BreakReef, Difficulty: surf.Advanced},
	{Name: "Long Beach Peninsula", Latitude: 33.7701, Longitude: -118.1937, Region: "Los Angeles", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Rincon", Latitude: 34.3730, Longitude: -119.4780, Region: "Santa Barbara", BreakType: surf.BreakPoint, Difficulty: surf.Advanced},
	{Name: "Leadbetter Beach", Latitude: 34.4020, Longitude: -119.6960, Region: "Santa Barbara", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Swami's", Latitude: 33.0340, Longitude: -117.2930, Region: "San Diego", BreakType: surf.BreakReef, Difficulty: surf.Advanced},
	{Name: "Black's Beach", Latitude: 32.8890, Longitude: -117.2530, Region: "San Diego", BreakType: surf.BreakBeach, Difficulty: surf.Advanced},
	{Name: "La Jolla Shores", Latitude: 32.8570, Longitude: -117.2570, Region: "San Diego", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Pacific Beach", Latitude: 32.7970, Longitude: -117.2570, Region: "San Diego", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Oceanside Pier", Latitude: 33.1930, Longitude: -117.3860, Region: "San Diego", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Steamer Lane", Latitude: 36.9510, Longitude: -122.0260, Region: "Santa Cruz", BreakType: surf.BreakPoint, Difficulty: surf.Advanced},
	{Name: "Pleasure Point", Latitude: 36.9590, Longitude: -121.9690, Region: "Santa Cruz", BreakType: surf.BreakReef, Difficulty: surf.Intermediate},
	{Name: "Cowell's Beach", Latitude: 36.9620, Longitude: -122.0230, Region: "Santa Cruz", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Mavericks", Latitude: 37.4920, Longitude: -122.5010, Region: "San Mateo", BreakType: surf.BreakReef, Difficulty: surf.Advanced},
	{Name: "Linda Mar", Latitude: 37.5940, Longitude: -122.5030, Region: "San Mateo", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
	{Name: "Ocean Beach", Latitude: 37.7590, Longitude: -122.5110, Region: "San Francisco", BreakType: surf.BreakBeach, Difficulty: surf.Advanced},
	{Name: "Morro Rock", Latitude: 35.3710, Longitude: -120.8670, Region: "San Luis Obispo", BreakType: surf.BreakBeach, Difficulty: surf.Intermediate},
	{Name: "Pismo Beach Pier", Latitude: 35.1390, Longitude: -120.6440, Region: "San Luis Obispo", BreakType: surf.BreakBeach, Difficulty: surf.Beginner},
}
