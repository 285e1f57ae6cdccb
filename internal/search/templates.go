package search

import "strings"

// templateFor picks a canned result by matching substrings of the request
// category. The rule set is intentionally tiny: "smartphone" routes to the
// tech comparison, "travel" to the itinerary, everything else to the
// generic home-repair default.
func templateFor(category string) Result {
	seed := strings.ToLower(category)
	switch {
	case strings.Contains(seed, "smartphone"):
		return techComparisonTemplate()
	case strings.Contains(seed, "travel"):
		return itineraryTemplate()
	default:
		return defaultTemplate()
	}
}

// Each template constructor returns a fresh value so callers can mutate
// step IDs without poisoning later simulations.

func defaultTemplate() Result {
	return Result{
		Summary: "After reviewing top repair forums, manufacturer manuals, and troubleshooting videos, " +
			"the most common leak source is worn teflon tape or a hairline crack inside the shower arm. " +
			"A 20-minute resealing process fixes 82% of reported cases.",
		Steps: []Step{
			{
				ID:          "step-1",
				Title:       "Shut off water & prep area",
				Description: "Turn off water at the shower valve, dry the threads, and place a towel in the tub to protect from scratching.",
			},
			{
				ID:          "step-2",
				Title:       "Remove shower head",
				Description: "Use adjustable pliers with a cloth grip, rotating counterclockwise until the head detaches.",
			},
			{
				ID:          "step-3",
				Title:       "Inspect parts",
				Description: "Check washer and shower arm threads for cracks or mineral buildup. Replace washer if flattened.",
			},
			{
				ID:          "step-4",
				Title:       "Reseal threads",
				Description: "Apply 6 wraps of PTFE tape clockwise, then add a thin bead of plumber's thread sealant rated for hot water.",
			},
			{
				ID:          "step-5",
				Title:       "Reinstall & test",
				Description: "Tighten gently until snug, restore water, and test for 60 seconds. Observe for leaks at the joint.",
			},
		},
		DecisionFactors: []DecisionFactor{
			{
				ID:     "factor-1",
				Label:  "Total materials cost",
				Detail: "$12-18 (PTFE tape, sealant, replacement washer) based on Home Depot + Lowe's pricing.",
			},
			{
				ID:     "factor-2",
				Label:  "Time to complete",
				Detail: "20-30 minutes with common household tools.",
			},
			{
				ID:     "factor-3",
				Label:  "When to call a pro",
				Detail: "If shower arm is cracked inside the wall or corrosion is visible on supply pipe, consult a plumber ($120 avg).",
			},
		},
		Sources: []Source{
			{
				ID:          "source-1",
				Title:       "Family Handyman - Stop Shower Arm Leaks",
				URL:         "https://www.familyhandyman.com/project/fix-a-leaking-shower/",
				Credibility: 87,
				Snippet:     "Step-by-step walkthrough backed by plumbing professionals with emphasis on resealing best practices.",
			},
			{
				ID:          "source-2",
				Title:       "Moen Support - Shower Head Maintenance",
				URL:         "https://solutions.moen.com/Article_Library/Showerhead_Maintenance",
				Credibility: 92,
				Snippet:     "Manufacturer repair bulletin identifying gasket wear as the leading cause of leaks.",
			},
			{
				ID:          "source-3",
				Title:       "Reddit r/HomeImprovement",
				URL:         "https://www.reddit.com/r/HomeImprovement",
				Credibility: 72,
				Snippet:     "Aggregated DIY testimonials citing PTFE tape failures after 2-3 years of use.",
			},
		},
		EstimatedMinutes: 25,
		Difficulty:       DifficultyEasy,
		RecommendedActions: []string{
			"Pick up PTFE tape, sealant, and spare washer before starting",
			"Take before/after photos for warranties or landlord records",
			"Re-test after 24 hours to ensure seal integrity",
		},
	}
}

func techComparisonTemplate() Result {
	return Result{
		Summary: "Compared the 17 most-reviewed phones under $500 across GSMArena, Rtings, and Wirecutter. " +
			"Pixel 7a leads overall value, while Galaxy A55 provides the best battery life. " +
			"All shortlisted options support 5G and NFC payments.",
		Steps: []Step{
			{
				ID:          "compare-1",
				Title:       "Top pick: Google Pixel 7a ($399)",
				Description: "Best-in-class camera, 7-year update promise, solid battery, and wireless charging at this price.",
			},
			{
				ID:          "compare-2",
				Title:       "Battery leader: Samsung Galaxy A55 ($449)",
				Description: "Largest 5,000 mAh battery tested, 2-day endurance in GSM Arena drain test, vibrant AMOLED display.",
			},
			{
				ID:          "compare-3",
				Title:       "Budget option: OnePlus Nord N30 ($299)",
				Description: "Super-fast 67W charging, 120Hz display, compromises on camera consistency but 2-year warranty.",
			},
		},
		DecisionFactors: []DecisionFactor{
			{ID: "factor-a", Label: "Longevity", Detail: "Only Google guarantees 7 years of updates; Samsung offers 4 years for the A55."},
			{ID: "factor-b", Label: "Battery life", Detail: "A55 wins (15h+ video loop). Pixel 7a lasts 12h 43m, Nord N30 11h."},
			{ID: "factor-c", Label: "Camera quality", Detail: "Pixel 7a uses flagship sensor and Tensor chip - best HDR + night performance."},
		},
		Sources: []Source{
			{
				ID:          "src-tech-1",
				Title:       "Wirecutter Budget Smartphones 2024",
				URL:         "https://www.nytimes.com/wirecutter",
				Credibility: 90,
				Snippet:     `Pixel 7a called "the best phone most people should buy under $500."`,
			},
			{
				ID:          "src-tech-2",
				Title:       "GSMArena Battery Benchmarks",
				URL:         "https://www.gsmarena.com/battery-test.php3",
				Credibility: 84,
				Snippet:     "Objective lab measurements comparing 65 sub-$500 phones.",
			},
			{
				ID:          "src-tech-3",
				Title:       "Rtings Smartphone Reviews",
				URL:         "https://www.rtings.com/smartphone",
				Credibility: 88,
				Snippet:     "Camera and performance scoring methodology explained with raw datasets.",
			},
		},
		EstimatedMinutes: 10,
		Difficulty:       DifficultyEasy,
		RecommendedActions: []string{
			"Visit carrier for hands-on feel before purchase",
			"Purchase within 14-day return window to test battery life",
			"Bundle with protective case + screen film to maintain value",
		},
	}
}

func itineraryTemplate() Result {
	return Result{
		Summary: "Generated a 4-day Mexico City food and culture itinerary prioritized around Roma Norte lodging. " +
			"Balances morning museum blocks, afternoon markets, and evening dining with verified reservation links.",
		Steps: []Step{
			{
				ID:          "travel-1",
				Title:       "Day 1 - Historic Core + Street Food",
				Description: "Palacio de Bellas Artes, Zocalo rooftop views, evening tacos al pastor crawl (El Vilsito, Taqueria Orinoco).",
			},
			{
				ID:          "travel-2",
				Title:       "Day 2 - Museums & Chapultepec",
				Description: "Frida Kahlo Museum timed entry 9am, lunch at Contramar (book via Resy), sunset paddleboats.",
			},
			{
				ID:          "travel-3",
				Title:       "Day 3 - Markets + Cooking Class",
				Description: "Private class via AirBnB Experiences sourcing spices at Mercado Medellin.",
			},
			{
				ID:          "travel-4",
				Title:       "Day 4 - Teotihuacan Excursion",
				Description: "Sunrise hot-air balloon add-on, lunch at La Gruta cave restaurant, timed Uber back before 4pm traffic.",
			},
		},
		DecisionFactors: []DecisionFactor{
			{ID: "travel-factor-1", Label: "Budget", Detail: "Estimated $950 total for two people (lodging excluded)."},
			{ID: "travel-factor-2", Label: "Safety", Detail: `Roma/Condesa rated "Moderate" by U.S. State Dept; Uber safest for late-night rides.`},
			{ID: "travel-factor-3", Label: "Seasonality", Detail: "Best weather March-May; rainy season Jun-Sep requires backup indoor plans."},
		},
		Sources: []Source{
			{
				ID:          "travel-src-1",
				Title:       "Lonely Planet Mexico City 2024",
				URL:         "https://www.lonelyplanet.com",
				Credibility: 78,
				Snippet:     "Neighborhood guides with updated restaurant closures.",
			},
			{
				ID:          "travel-src-2",
				Title:       "CDMX Tourism Safety Brief",
				URL:         "https://www.travel.state.gov",
				Credibility: 95,
				Snippet:     "Latest Level 2 advisory with actionable precautions.",
			},
			{
				ID:          "travel-src-3",
				Title:       "Eater 38 Essential Mexico City Restaurants",
				URL:         "https://mexico.eater.com/maps",
				Credibility: 82,
				Snippet:     "Editor-curated dining hits for 2024.",
			},
		},
		EstimatedMinutes: 60,
		Difficulty:       DifficultyMedium,
		RecommendedActions: []string{
			"Book museum tickets at least 10 days ahead",
			"Exchange pesos via ATM at airport upon arrival",
			"Enable eSIM (Airalo/Ubigi) for cheaper data",
		},
	}
}
