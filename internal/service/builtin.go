package service

import "github.com/shiva/wanderplan/internal/model"

// Built-in catalog shipped with the binary. The catalog repository adds to
// it; it is also what quick-fill falls back to when the database is empty.

func at(lat, lng float64) *model.Coordinates {
	return &model.Coordinates{Lat: lat, Lng: lng}
}

var (
	slotsMorning   = []model.Slot{model.SlotMorning}
	slotsAfternoon = []model.Slot{model.SlotAfternoon}
	slotsDay       = []model.Slot{model.SlotMorning, model.SlotAfternoon}
	slotsEvening   = []model.Slot{model.SlotEvening}
	slotsNight     = []model.Slot{model.SlotEvening, model.SlotNight}
	slotsStay      = []model.Slot{model.SlotAccommodation}
)

// BuiltinCatalog returns a fresh copy of the built-in catalog entries.
func BuiltinCatalog() []model.CatalogEntry {
	entries := []model.CatalogEntry{
		// ── Taipei ─────────────────────────────────────────
		{Item: model.TravelItem{
			ID: "tpe-101", Title: "台北101觀景台", TitleEn: "Taipei 101 Observatory",
			Category: model.CategoryAttraction, Duration: "1.5 hours", Price: 600,
			Coordinates: at(25.0340, 121.5645), Rating: 4.6, Region: "taipei",
			Tags: []string{"view", "landmark"},
			InsiderTip: &model.InsiderTip{
				Content:    "Go up about 40 minutes before sunset to see the city in daylight and at night.",
				Highlights: []string{"sunset", "damper ball"},
			},
		}, SuggestedSlots: slotsDay},
		{Item: model.TravelItem{
			ID: "tpe-palace-museum", Title: "國立故宮博物院", TitleEn: "National Palace Museum",
			Category: model.CategoryAttraction, Duration: "3 hours", Price: 350,
			Coordinates: at(25.1024, 121.5485), Rating: 4.7, Region: "taipei",
			Tags: []string{"museum", "history"},
		}, SuggestedSlots: slotsMorning},
		{Item: model.TravelItem{
			ID: "tpe-yongkang", Title: "永康街小吃", TitleEn: "Yongkang Street Eats",
			Category: model.CategoryFood, Duration: "1hr", Price: 300,
			Coordinates: at(25.0329, 121.5297), Rating: 4.4, Region: "taipei",
			Tags: []string{"street food"},
		}, SuggestedSlots: slotsAfternoon},
		{Item: model.TravelItem{
			ID: "tpe-elephant", Title: "象山步道", TitleEn: "Elephant Mountain Trail",
			Category: model.CategoryNature, Duration: "90min", Price: 0,
			Coordinates: at(25.0274, 121.5766), Rating: 4.6, Region: "taipei",
			Tags: []string{"hike", "view"},
		}, SuggestedSlots: []model.Slot{model.SlotMorning, model.SlotEvening}},
		{Item: model.TravelItem{
			ID: "tpe-raohe", Title: "饒河街夜市", TitleEn: "Raohe Night Market",
			Category: model.CategoryFood, Duration: "2 hours", Price: 400,
			Coordinates: at(25.0509, 121.5775), Rating: 4.5, Region: "taipei",
			Tags: []string{"night market"},
		}, SuggestedSlots: slotsNight},
		{Item: model.TravelItem{
			ID: "tpe-ximending", Title: "西門町", TitleEn: "Ximending",
			Category: model.CategoryShopping, Duration: "2 hours", Price: 800,
			Coordinates: at(25.0422, 121.5078), Rating: 4.3, Region: "taipei",
		}, SuggestedSlots: slotsEvening},
		{Item: model.TravelItem{
			ID: "tpe-hotel-da-an", Title: "大安區精品旅館", TitleEn: "Da'an Boutique Hotel",
			Category: model.CategoryLodging, Duration: "1 night", Price: 3200,
			Coordinates: at(25.0264, 121.5436), Rating: 4.2, Region: "taipei",
		}, SuggestedSlots: slotsStay},

		// ── Tokyo ──────────────────────────────────────────
		{Item: model.TravelItem{
			ID: "tyo-sensoji", Title: "浅草寺", TitleEn: "Senso-ji",
			Category: model.CategoryAttraction, Duration: "1.5 hours", Price: 0,
			Coordinates: at(35.7148, 139.7967), Rating: 4.6, Region: "tokyo",
			Tags: []string{"temple"},
		}, SuggestedSlots: slotsMorning},
		{Item: model.TravelItem{
			ID: "tyo-tsukiji", Title: "築地場外市場", TitleEn: "Tsukiji Outer Market",
			Category: model.CategoryFood, Duration: "1hr", Price: 3000,
			Coordinates: at(35.6654, 139.7707), Rating: 4.4, Region: "tokyo",
		}, SuggestedSlots: slotsDay},
		{Item: model.TravelItem{
			ID: "tyo-shibuya-sky", Title: "渋谷スカイ", TitleEn: "Shibuya Sky",
			Category: model.CategoryAttraction, Duration: "1 hour", Price: 2200,
			Coordinates: at(35.6585, 139.7023), Rating: 4.7, Region: "tokyo",
		}, SuggestedSlots: slotsEvening},
		{Item: model.TravelItem{
			ID: "tyo-golden-gai", Title: "新宿ゴールデン街", TitleEn: "Golden Gai",
			Category: model.CategoryFood, Duration: "2 hours", Price: 4000,
			Coordinates: at(35.6938, 139.7046), Rating: 4.3, Region: "tokyo",
		}, SuggestedSlots: []model.Slot{model.SlotNight}},
		{Item: model.TravelItem{
			ID: "tyo-hotel-ueno", Title: "上野ビジネスホテル", TitleEn: "Ueno Business Hotel",
			Category: model.CategoryLodging, Duration: "1 night", Price: 12000,
			Coordinates: at(35.7118, 139.7770), Rating: 4.0, Region: "tokyo",
		}, SuggestedSlots: slotsStay},
	}
	return entries
}

// BuiltinTemplates returns the itinerary templates shipped with the binary.
// Template items carry fixed instance ids; applying a template always
// replaces them.
func BuiltinTemplates() []model.Template {
	byID := make(map[string]model.TravelItem)
	for _, e := range BuiltinCatalog() {
		byID[e.Item.ID] = e.Item
	}
	place := func(id, instance, start string) model.ScheduleItem {
		it := model.NewScheduleItem(byID[id])
		it.InstanceID = instance
		it.StartTime = start
		return it
	}

	day1 := model.EmptyDay()
	day1.Morning = []model.ScheduleItem{place("tpe-palace-museum", "tpl-tpe-1", "09:30")}
	day1.Afternoon = []model.ScheduleItem{place("tpe-yongkang", "tpl-tpe-2", "13:00"), place("tpe-101", "tpl-tpe-3", "15:30")}
	day1.Night = []model.ScheduleItem{place("tpe-raohe", "tpl-tpe-4", "21:00")}
	day1.Accommodation = []model.ScheduleItem{place("tpe-hotel-da-an", "tpl-tpe-5", "")}

	day2 := model.EmptyDay()
	day2.Morning = []model.ScheduleItem{place("tpe-elephant", "tpl-tpe-6", "07:00")}
	day2.Evening = []model.ScheduleItem{place("tpe-ximending", "tpl-tpe-7", "18:00")}

	return []model.Template{
		{ID: "taipei-weekend", Name: "Taipei Weekend", Region: "taipei", Days: []model.DaySchedule{day1, day2}},
	}
}
