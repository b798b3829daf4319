package corpus

// Builtin returns the fallback records used when no source file yields a
// record. They cover employment contracts, resignation, dismissal, salary,
// paid leave and data protection.
func Builtin() []Record {
	return []Record{
		{
			ID:      "contrat",
			Title:   "Contrat de travail",
			Content: "Un contrat de travail doit contenir: le poste, le salaire, la durée du travail, et les conditions de rupture.",
		},
		{
			ID:      "démission",
			Title:   "Démission",
			Content: "Pour démissionner, le salarié doit respecter un préavis selon le secteur d'activité.",
		},
		{
			ID:      "licenciement",
			Title:   "Licenciement",
			Content: "Le licenciement doit être justifié par une cause réelle et sérieuse.",
		},
		{
			ID:      "salaire",
			Title:   "Salaire",
			Content: "Le salaire minimum est le SMIC (Salaire Minimum Interprofessionnel de Croissance).",
		},
		{
			ID:      "congés",
			Title:   "Congés",
			Content: "Le salarié a droit à 5 semaines de congés payés par an.",
		},
		{
			ID:      "rgpd",
			Title:   "RGPD",
			Content: "Le RGPD impose la protection des données personnelles en entreprise.",
		},
	}
}
