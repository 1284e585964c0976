package postgres

import "github.com/fieldmarshal/career-league/internal/domain/player"

type playerModel struct {
	ID                 string  `db:"id"`
	UserID             string  `db:"user_id"`
	Name               string  `db:"name"`
	Position           string  `db:"position"`
	TeamID             string  `db:"team_id"`
	LeagueID           string  `db:"league_id"`
	Pace               int     `db:"pace"`
	Shooting           int     `db:"shooting"`
	Passing            int     `db:"passing"`
	Dribbling          int     `db:"dribbling"`
	Defending          int     `db:"defending"`
	Physical           int     `db:"physical"`
	Overall            int     `db:"overall"`
	Potential          int     `db:"potential"`
	Form               int     `db:"form"`
	Morale             int     `db:"morale"`
	Age                int     `db:"age"`
	Wage               int64   `db:"wage"`
	ContractYears      int     `db:"contract_years"`
	Retired            bool    `db:"retired"`
	RetiredInSeason    int     `db:"retired_in_season"`
	LastTransferWindow int     `db:"last_transfer_window"`
	SeasonApps         int     `db:"season_apps"`
	SeasonGoals        int     `db:"season_goals"`
	SeasonAssists      int     `db:"season_assists"`
	SeasonRating       float64 `db:"season_rating"`
}

const playerColumns = `id, user_id, name, position, team_id, league_id,
pace, shooting, passing, dribbling, defending, physical,
overall, potential, form, morale, age, wage, contract_years,
retired, retired_in_season, last_transfer_window,
season_apps, season_goals, season_assists, season_rating`

func playerToModel(v player.Player) playerModel {
	return playerModel{
		ID:                 v.ID,
		UserID:             v.UserID,
		Name:               v.Name,
		Position:           string(v.Position),
		TeamID:             v.TeamID,
		LeagueID:           v.LeagueID,
		Pace:               v.Attributes.Pace,
		Shooting:           v.Attributes.Shooting,
		Passing:            v.Attributes.Passing,
		Dribbling:          v.Attributes.Dribbling,
		Defending:          v.Attributes.Defending,
		Physical:           v.Attributes.Physical,
		Overall:            v.Overall,
		Potential:          v.Potential,
		Form:               v.Form,
		Morale:             v.Morale,
		Age:                v.Age,
		Wage:               v.Wage,
		ContractYears:      v.ContractYears,
		Retired:            v.Retired,
		RetiredInSeason:    v.RetiredInSeason,
		LastTransferWindow: v.LastTransferWindow,
		SeasonApps:         v.SeasonApps,
		SeasonGoals:        v.SeasonGoals,
		SeasonAssists:      v.SeasonAssists,
		SeasonRating:       v.SeasonRating,
	}
}

func playerFromModel(row playerModel) player.Player {
	return player.Player{
		ID:       row.ID,
		UserID:   row.UserID,
		Name:     row.Name,
		Position: player.Position(row.Position),
		TeamID:   row.TeamID,
		LeagueID: row.LeagueID,
		Attributes: player.Attributes{
			Pace:      row.Pace,
			Shooting:  row.Shooting,
			Passing:   row.Passing,
			Dribbling: row.Dribbling,
			Defending: row.Defending,
			Physical:  row.Physical,
		},
		Overall:            row.Overall,
		Potential:          row.Potential,
		Form:               row.Form,
		Morale:             row.Morale,
		Age:                row.Age,
		Wage:               row.Wage,
		ContractYears:      row.ContractYears,
		Retired:            row.Retired,
		RetiredInSeason:    row.RetiredInSeason,
		LastTransferWindow: row.LastTransferWindow,
		SeasonApps:         row.SeasonApps,
		SeasonGoals:        row.SeasonGoals,
		SeasonAssists:      row.SeasonAssists,
		SeasonRating:       row.SeasonRating,
	}
}
