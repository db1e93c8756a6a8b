package handlers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/astralex/spacebot/bot/nasa"
	"github.com/astralex/spacebot/core/telegram/keyboard"
)

// Callback keys. They double as registry routes, so each key appears exactly
// once in the inline keyboards below.
const (
	cbYes        = "yes"
	cbNo         = "no"
	cbGo         = "go"
	cbEarth      = "Earth"
	cbMars       = "Mars"
	cbSpace      = "Space"
	cbFinishWork = "finish_work"
	cbHistory    = "history"
	cbColor      = "Color_photos"
	cbBlackWhite = "Black_white_photos"

	cbMarsContinue  = "mars_continue"
	cbMarsStop      = "mars_stop"
	cbEarthContinue = "earth_continue"
	cbEarthStop     = "earth_stop"
	cbSpaceContinue = "space_continue"
	cbSpaceStop     = "space_stop"

	cbNewDate   = "new_date"
	cbNewPlanet = "new_planet"
)

// menuButtonText is the persistent reply-keyboard button shown after launch.
const menuButtonText = "Меню  🔭"

func tripKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "ДА 🙂", Unique: cbYes},
		{Text: "НЕТ 🙃", Unique: cbNo},
	})
}

func launchKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Стартуем 🚀", Unique: cbGo},
	})
}

func menuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{menuButtonText})
}

func destinationKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		{Text: "Земля 🌍", Unique: cbEarth},
		{Text: "Марс 🌌", Unique: cbMars},
		{Text: "Исследовать космос 🌠", Unique: cbSpace},
		{Text: "Завершить работу ✅", Unique: cbFinishWork},
		{Text: "История путешествий 🛸", Unique: cbHistory},
	}, 2)
}

func marsColorKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Цветные 🌞", Unique: cbColor},
		{Text: "Черно-белые 🌚", Unique: cbBlackWhite},
	})
}

// moreKeyboard offers to keep viewing the current place or go back to the menu.
func moreKeyboard(place nasa.Place) *tele.ReplyMarkup {
	var cont, stop string
	switch place {
	case nasa.PlaceMars:
		cont, stop = cbMarsContinue, cbMarsStop
	case nasa.PlaceEarth:
		cont, stop = cbEarthContinue, cbEarthStop
	default:
		cont, stop = cbSpaceContinue, cbSpaceStop
	}
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Еще фото 🛎", Unique: cont},
		{Text: "Достаточно 🚧", Unique: stop},
	})
}

func recoveryKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Новая дата 📅", Unique: cbNewDate},
		{Text: "Новая планета 🪐", Unique: cbNewPlanet},
	})
}
