package models

// Site is a university campus where programs are offered.
type Site struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Canton   string `json:"canton"`
	Province string `json:"province"`
}

var sites = []Site{
	{ID: 1, Name: "Matriz - Manta", Canton: "MANTA", Province: "MANABÍ"},
	{ID: 2, Name: "Chone", Canton: "CHONE", Province: "MANABÍ"},
	{ID: 3, Name: "El Carmen", Canton: "EL CARMEN", Province: "MANABÍ"},
	{ID: 4, Name: "Pedernales", Canton: "PEDERNALES", Province: "MANABÍ"},
	{ID: 5, Name: "Bahía de Caráquez", Canton: "SUCRE", Province: "MANABÍ"},
	{ID: 6, Name: "Tosagua", Canton: "TOSAGUA", Province: "MANABÍ"},
	{ID: 7, Name: "Santo Domingo", Canton: "SANTO DOMINGO", Province: "SANTO DOMINGO DE LOS TSÁCHILAS"},
	{ID: 8, Name: "Flavio Alfaro", Canton: "FLAVIO ALFARO", Province: "MANABÍ"},
	{ID: 9, Name: "Pichincha", Canton: "PICHINCHA", Province: "MANABÍ"},
}

// Sites returns the campus catalog.
func Sites() []Site {
	out := make([]Site, len(sites))
	copy(out, sites)
	return out
}

// FindSite looks up a campus by id.
func FindSite(id int) (Site, bool) {
	for _, s := range sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}
