package lexicon

import (
	"regexp"

	"github.com/ppiankov/caseline/internal/model"
)

// Default returns the built-in lexicon. The cue lists and signal table are
// hand-curated against real narratives; their precedence order is load-bearing
// and must not be reorganized.
func Default() *Lexicon {
	lex := &Lexicon{
		Exact: map[string]Tag{
			// Symptoms and findings
			"rash": TagSymptom, "fever": TagSymptom, "nausea": TagSymptom,
			"vomiting": TagSymptom, "headache": TagSymptom, "pain": TagSymptom,
			"swelling": TagSymptom, "dizziness": TagSymptom, "fatigue": TagSymptom,
			"chills": TagSymptom, "syncope": TagSymptom, "seizure": TagSymptom,
			"urticaria": TagSymptom, "pruritus": TagSymptom, "erythema": TagSymptom,
			"dyspnea": TagSymptom, "cough": TagSymptom, "diarrhea": TagSymptom,
			"asthma": TagSymptom, "weakness": TagSymptom, "numbness": TagSymptom,
			"anaphylaxis": TagSymptom, "hives": TagSymptom, "malaise": TagSymptom,
			"myalgia": TagSymptom, "arthralgia": TagSymptom, "pyrexia": TagSymptom,
			"soreness": TagSymptom, "redness": TagSymptom, "itching": TagSymptom,
			"tingling": TagSymptom, "palpitations": TagSymptom, "hypertension": TagSymptom,
			"diabetes": TagSymptom, "pneumonia": TagSymptom, "cellulitis": TagSymptom,

			// Common drugs
			"aspirin": TagDrug, "ibuprofen": TagDrug, "acetaminophen": TagDrug,
			"tylenol": TagDrug, "prednisone": TagDrug, "benadryl": TagDrug,
			"diphenhydramine": TagDrug, "epinephrine": TagDrug, "metformin": TagDrug,
			"lisinopril": TagDrug, "amoxicillin": TagDrug,

			// Vaccines
			"vax": TagVaccine, "vaccine": TagVaccine, "flu shot": TagVaccine,
			"influenza vaccine": TagVaccine, "zostavax": TagVaccine,
			"gardasil": TagVaccine, "varivax": TagVaccine, "prevnar": TagVaccine,
			"tdap": TagVaccine, "mmr": TagVaccine, "hep b": TagVaccine,

			// Cues
			"diagnosed with": TagDiagnosisCue, "diagnosis of": TagDiagnosisCue,
			"dx": TagDiagnosisCue, "diagnosed as": TagDiagnosisCue,
			"history of": TagHistoryCue, "h/o": TagHistoryCue, "hx of": TagHistoryCue,
			"past medical history": TagHistoryCue,
			"family history of": TagFamilyCue, "family history": TagFamilyCue,
			"rule out": TagRuleOutCue, "r/o": TagRuleOutCue,
			"cause of death": TagDeathCue, "died of": TagDeathCue,
			"died from": TagDeathCue, "death due to": TagDeathCue,
			"developed": TagOnsetCue, "experienced": TagOnsetCue,
			"presented with": TagOnsetCue, "presents with": TagOnsetCue,
			"noted": TagOnsetCue, "reported": TagOnsetCue, "complained of": TagOnsetCue,

			// Event anchors
			"vaccination": TagVaccination, "vaccinated": TagVaccination,
			"immunization": TagVaccination, "immunized": TagVaccination,
			"injection": TagInjection, "injected": TagInjection,
			"hospitalized": TagHospital, "hospitalization": TagHospital,
			"admitted": TagHospital, "admission": TagHospital,
			"received": TagAdministration, "given": TagAdministration,
			"administered": TagAdministration, "started": TagAdministration,
			"took": TagAdministration, "taking": TagAdministration,

			"dose": TagDose, "doses": TagDose, "booster": TagDose,
			"concomitant": TagConcomitant, "concomitantly": TagConcomitant,
			"and": TagConj, "or": TagConj, "&": TagConj,
		},
		Regex: []RegexRule{
			// Drug nomenclature suffixes
			{regexp.MustCompile(`(?i)^\w+(mab|pril|statin|cillin|mycin|azole|azepam|dipine|olol|sartan|prazole|vir)$`), TagDrug},
			// Vendor-style coined drug names ("DrugX", "CompoundB12")
			{regexp.MustCompile(`^[A-Z][a-z]+[A-Z]\w*$`), TagDrug},
			// Vaccine trade names are frequently all-caps with digits
			{regexp.MustCompile(`^[A-Z]{2,}[0-9]+$`), TagVaccine},
			// -itis / -emia / -pathy findings
			{regexp.MustCompile(`(?i)^\w+(itis|emia|pathy|algia|osis|edema)$`), TagSymptom},
		},
		Primary: []ChunkRule{
			// Longest / most specific first
			{model.FeatureSymptom, []Tag{TagOnsetCue, TagSymptom, TagConj, TagSymptom}},
			{model.FeatureDiagnosis, []Tag{TagDiagnosisCue, TagSymptom, TagConj, TagSymptom}},
			{model.FeatureSymptom, []Tag{TagSymptom, TagConj, TagSymptom}},
			{model.FeatureDiagnosis, []Tag{TagDiagnosisCue, TagSymptom}},
			{model.FeatureDiagnosis, []Tag{TagDiagnosisCue, TagAny}},
			{model.FeatureDrug, []Tag{TagAdministration, TagDrug}},
			{model.FeatureVaccine, []Tag{TagAdministration, TagVaccine}},
			{model.FeatureDrug, []Tag{TagAdministration, TagWord}},
			{model.FeatureSymptom, []Tag{TagOnsetCue, TagSymptom}},
			{model.FeatureVaccine, []Tag{TagVaccine}},
			{model.FeatureDrug, []Tag{TagDrug}},
			{model.FeatureSymptom, []Tag{TagSymptom}},
		},
		Secondary: []ChunkRule{
			{model.FeatureFamilyHistory, []Tag{TagFamilyCue, TagSymptom}},
			{model.FeatureFamilyHistory, []Tag{TagFamilyCue, TagAny}},
			{model.FeatureMedicalHistory, []Tag{TagHistoryCue, TagSymptom}},
			{model.FeatureMedicalHistory, []Tag{TagHistoryCue, TagDrug}},
			{model.FeatureMedicalHistory, []Tag{TagHistoryCue, TagAny}},
			{model.FeatureRuleOut, []Tag{TagRuleOutCue, TagSymptom}},
			{model.FeatureRuleOut, []Tag{TagRuleOutCue, TagAny}},
			{model.FeatureCauseOfDeath, []Tag{TagDeathCue, TagSymptom}},
			{model.FeatureCauseOfDeath, []Tag{TagDeathCue, TagAny}},
		},
		Signals: map[string]SignalRule{
			"later":     {RelAfter, 0.9},
			"after":     {RelAfter, 0.9},
			"following": {RelAfter, 0.8},
			"post":      {RelAfter, 0.7},
			"since":     {RelAfter, 0.6},
			"before":    {RelBefore, 0.9},
			"prior":     {RelBefore, 0.9},
			"ago":       {RelBefore, 0.9},
			"earlier":   {RelBefore, 0.8},
			"previous":  {RelBefore, 0.7},
			"preceding": {RelBefore, 0.7},
			"same":      {RelSame, 0.8},
			"that":      {RelSame, 0.5},
		},

		// Precedence: IgnoreCues/ZoneBreakers/UnknownDate stop propagation at
		// the sentence; SkipCues excise the sentence from a spanning zone.
		IgnoreCues: []string{
			"follow-up", "follow up", "followup", "f/u",
		},
		ZoneBreakers: []string{
			"documented", "coded", "lot number", "expired",
		},
		UnknownDate: []string{
			"unknown date", "an unspecified date", "unspecified date",
			"unknown time", "unspecified time",
		},
		SkipCues: []string{
			"history of", "family history", "medical history", "past medical",
			"h/o", "hx of", "allergies:",
		},
		RoleIgnoreCues: []string{
			"reported on", "report received", "received by", "notified on",
			"follow-up", "follow up", "f/u on", "expiration", "expires",
			"exp date", "visual acuity", "va ",
		},
		SummaryClauses: []string{
			"who presents with", "who presented with", "presenting with",
		},
	}
	lex.finish()
	return lex
}
