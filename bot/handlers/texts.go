package handlers

// User-facing dialog texts. The journey speaks Russian, as the original bot
// audience does; button labels live in keyboards.go.
const (
	textGreeting = "Приветствую %s,\nготовы совершить путешествие в космос? 🪐🌞☀️"

	textTripReprompt = "Кажется я вас не понимаю)\nТак полетим в космос или нет?"

	textTripAccepted = "Отлично)\nПриcтегните ремни, начинаем взлетать 💺"

	textFarewellNo = "Ну что же, в таком случае я с вами прощаюсь)\n" +
		"Полетаем в другой раз.\n" +
		"Если вдруг передумаете воспользуйтесь командой /start"

	textCountdown = "5️⃣                 4️⃣                 3️⃣                 2️⃣                 1️⃣                 0️⃣"

	textLaunchReprompt = "Кажется появились какие-то технические проблемы\nПробуем взлететь еще раз)"

	textInFlight = "✈️\n\nПрекрасно, мы набрали достаточную высоту для работы 📡"

	textMenuHint = "Для просмотра перечня моих возможностей, " +
		"воспользуйтесь кнопкой МЕНЮ или введите команду /help"

	textMenuReprompt = "Кажется вы ввели что-то не то, попробуйте еще раз)"

	textChoosePlace = "Сейчас я вам помогу)\nФотографии каких планет желаете посмотреть?"

	textChoosePlaceReprompt = "Кажется вы ввели что-то не то"

	textMarsChosen = "Хорошо, будем исследовать Марс)"

	textMarsColorHint = "Какие фотографии желаете просмотреть?\n" +
		"Имейте ввиду, что черно-белый Марс некоторым может показаться слишком депрессивным, " +
		"а поиск цветных фото иногда выполняется очень долго " +
		"(а иногда и вовсе в выбранный день я не смогу найти ни одной цветной фотографии).\n" +
		"Так что подумайте хорошенько прежде чем выбрать)"

	textMarsColorReprompt = "Я вас не понимаю, воспользуйтесь экранной клавиатурой и выберите цвет фото)"

	textColorChosen = "Хорошо, поищем цветное фото)\n" +
		"Теперь приступим к выбору даты для просмотра его фотографий\n" +
		"Если вы ввели что-то не то, смело нажимайте на кнопку с выбранным вами параметром\n" +
		"(год, месяц, день) и начинайте с начала"

	textUncoloredChosen = "Хорошо, поищем черно-белые фото)\n" +
		"Теперь приступим к выбору даты для просмотра его фотографий\n" +
		"Если вы ввели что-то не то, смело нажимайте на кнопку с выбранным вами параметром\n" +
		"(год, месяц, день) и начинайте с начала"

	textEarthChosen = "Хорошо, будем исследовать Землю)"

	textSpaceChosen = "Хорошо, будем исследовать Космос)"

	textPickDate = "Приступим к выбору даты для просмотра фотографий)\n" +
		"Если вы ввели что-то не то, смело нажимайте на кнопку с выбранным вами параметром\n" +
		"(год, месяц, день) и начинайте с начала"

	textCalendarReprompt = "Я вас не понимаю, попробуйте ввести дату при помощи экранной клавиатуры)"

	textDateChosen = "Вы выбрали %s"

	textRetrying = "Подождите еще чуть-чуть)"

	textPhotoCaption = "Вот, что я нашел"

	textMorePrompt = "Ну что, останемся еще немного на этой планете или выберем что-то другое?)"

	textPhotoReprompt = "Я вас не понимаю, подумайте еще)"

	textContinueMars  = "Продолжаем исследовать Марс"
	textContinueEarth = "Продолжаем исследовать Землю"
	textContinueSpace = "Продолжаем исследовать Космос"

	textStopMars  = "В самом деле, Марс уже поднадоел)"
	textStopEarth = "В самом деле, Земля уже поднадоела)"
	textStopSpace = "В самом деле, Космос уже поднадоел)"

	textQuotaExhausted = "Вы исчерпали лимит попыток, попробуйте воспользоваться мной немного позже"

	textUnavailable = "Кажется появились какие-то неполадки на линии, попробуйте еще раз чуть позже)"

	textNoPhotos = "На выбранную дату фотографий не нашлось)\n" +
		"Выберите новую дату или отправимся к другой планете?"

	textRecoveryReprompt = "Я вас не понимаю, воспользуйтесь экранной клавиатурой для ответа)"

	textNewDate = "Выберите новую дату"

	textNewPlanet = "Меняем курс)"

	textHistoryIntro = "Хорошо, посмотрим историю наших путешествий)"

	textHistoryBatch = "Вот, где мы успели побывать)"

	textHistoryDone = "Упс, кажется фотографии закончились)"

	textFinish = "Тогда на сегодня закончим"

	textFinishBye = "Обращайтесь при любой необходимости)"
)

// searchingGIF is shown while an adapter call is in flight and deleted after.
const searchingGIF = "https://vgif.ru/gifs/166/vgif-ru-37964.gif"
