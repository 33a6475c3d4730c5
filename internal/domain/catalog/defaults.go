package catalog

import "github.com/okian/podium/internal/domain/model"

// DefaultGames returns the festival's built-in game list.
func DefaultGames() []model.Game {
	return []model.Game{
		{ID: "acting", Name: "Acting", Icon: "🎭", Type: model.GameTypeIndividual},
		{ID: "arm_wrestling", Name: "Arm Wrestling", Icon: "💪", Type: model.GameTypeIndividual},
		{ID: "billiards", Name: "Billiards", Icon: "🎱", Type: model.GameTypeIndividual},
		{ID: "chess", Name: "Chess", Icon: "♟️", Type: model.GameTypeIndividual},
		{ID: "drawing", Name: "Drawing", Icon: "🎨", Type: model.GameTypeIndividual},
		{ID: "fitness", Name: "Fitness", Icon: "🏋️", Type: model.GameTypeIndividual},
		{ID: "football", Name: "Football", Icon: "⚽", Type: model.GameTypeTeam},
		{ID: "handcrafting", Name: "Hand Crafting", Icon: "✂️", Type: model.GameTypeIndividual},
		{ID: "music", Name: "Music Performance", Icon: "🎹", Type: model.GameTypeIndividual},
		{ID: "nasheed", Name: "Religious Chanting", Icon: "🎵", Type: model.GameTypeIndividual},
		{ID: "playstation", Name: "PlayStation", Icon: "🎮", Type: model.GameTypeIndividual},
		{ID: "poetry", Name: "Poetry", Icon: "📝", Type: model.GameTypeIndividual},
		{ID: "quran_memorization", Name: "Quran Memorization", Icon: "📖", Type: model.GameTypeIndividual},
		{ID: "quran_recitation", Name: "Quran Recitation", Icon: "🕌", Type: model.GameTypeIndividual},
		{ID: "quiz", Name: "Quiz Competition", Icon: "🧠", Type: model.GameTypeIndividual},
		{ID: "running", Name: "Running", Icon: "🏃", Type: model.GameTypeIndividual},
		{ID: "singing", Name: "Singing", Icon: "🎤", Type: model.GameTypeIndividual},
		{ID: "table_tennis", Name: "Table Tennis", Icon: "🏓", Type: model.GameTypeIndividual},
		{ID: "tug_of_war", Name: "Tug of War", Icon: "🪢", Type: model.GameTypeTeam},
	}
}

// DefaultFaculties returns the festival's built-in faculty list.
func DefaultFaculties() []string {
	return []string{
		"Agriculture", "Archaeology", "Arts", "Arts & Humanities", "Commerce",
		"Computer Science", "Computers & IT", "Dentistry", "Education",
		"Engineering", "Girls College", "Home Economics", "Law",
		"Mass Communication", "Medicine", "Nursing", "Pharmacy",
		"Science", "Technical Education", "Veterinary Medicine",
	}
}

// DefaultState returns the default catalog with an empty ledger.
func DefaultState() model.State {
	return model.State{
		Games:     DefaultGames(),
		Faculties: DefaultFaculties(),
		Results:   []model.Result{},
	}
}
