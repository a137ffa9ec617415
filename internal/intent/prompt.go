package intent

import "strings"

// SystemPrompt pins the model to a bare JSON answer.
const SystemPrompt = `Ты эксперт по анализу веб-страниц в сфере банкротства физических лиц.
Ответ должен быть строго в формате JSON без лишних символов, переносов строк или отступов. Не добавляй ничего перед или после JSON объекта.`

// Temperature is kept low so repeated runs give the same verdict.
const Temperature float32 = 0.1

const urlPlaceholder = "{url}"

const analysisPrompt = `
Ты эксперт по анализу веб-страниц в сфере банкротства физических лиц.
Твоя задача - детально оценить вероятность того, что посетитель данной страницы намерен ВОСПОЛЬЗОВАТЬСЯ УСЛУГОЙ БАНКРОТСТВА ФИЗЛИЦ, а не просто ищет информацию.

Проанализируй URL и его контекст: {url}

На основе URL и твоих знаний о структуре и контенте сайтов о банкротстве, оцени:

1. НАМЕРЕНИЕ И КОНТЕКСТ:
   - Какой тип услуги, вероятно, предлагается на странице? Это юридическое сопровождение банкротства, бесплатная консультация, или что-то другое?
   - Целевая аудитория: физические лица с долгами, или кто-то другой?
   - К каким действиям, вероятно, побуждает страница: получение информации, заказ услуги, заявка на консультацию?

2. КОНВЕРСИОННЫЕ ЭЛЕМЕНТЫ (оцени вероятность наличия):
   - Формы заявок на получение услуги банкротства
   - Калькуляторы для расчета стоимости банкротства
   - Кнопки "Оставить заявку", "Получить консультацию", "Начать банкротство" и т.п.
   - Контактная информация для связи с юристами
   - Возможность онлайн-чата с консультантом

3. СПЕЦИФИКА БАНКРОТСТВА ФИЗЛИЦ:
   - Насколько вероятно наличие специфических терминов: "списание долгов", "реструктуризация", "реализация имущества", "финансовый управляющий"?
   - Вероятность упоминания законов о банкротстве физлиц (127-ФЗ)?
   - Вероятность наличия описания этапов/процедуры банкротства?

4. ЭТАП ВОРОНКИ ПРОДАЖ:
   - На каком этапе воронки продаж, вероятно, находится страница: осведомленность, интерес, рассмотрение, решение?
   - Насколько страница, вероятно, близка к конечной конверсии (получению заявки)?

5. СРАВНИТЕЛЬНЫЙ АНАЛИЗ:
   - Эта страница, скорее всего, больше похожа на информационную статью, посадочную страницу услуги или форму заявки?
   - Сравни этот URL с типичными URL транзакционного характера в сфере юридических услуг.

ОЦЕНКА ТРАНЗАКЦИОННОГО НАМЕРЕНИЯ:
Используй следующую шкалу для оценки транзакционного намерения:
- 0-20%: Чисто информационная страница без коммерческого контекста
- 21-40%: Преимущественно информационная страница с минимальными коммерческими элементами
- 41-60%: Смешанный контент (информация + предложение услуг)
- 61-80%: Коммерческая страница с явным предложением услуг банкротства
- 81-100%: Прямая страница для заказа услуги банкротства (форма заявки, страница заказа)

ВАЖНО: Верни результат строго в формате JSON:
{
  "intentScore": число от 0 до 100,
  "intentCategory": "соответствующая категория из списка выше",
  "targetAudience": "физлица с долгами/другая аудитория",
  "transactionalElements": {
    "applicationForm": вероятность наличия от 0 до 100,
    "calculator": вероятность наличия от 0 до 100,
    "contactInfo": вероятность наличия от 0 до 100,
    "callToAction": вероятность наличия от 0 до 100,
    "chat": вероятность наличия от 0 до 100
  },
  "bankruptcySpecificTerms": ["термин1", "термин2", ...],
  "funnelStage": "этап воронки продаж",
  "detailedReasoning": "детальное объяснение оценки (до 200 слов)",
  "confidence": число от 0 до 100 (насколько уверен в своей оценке)
}
`

// BuildPrompt embeds url into the analysis rubric.
func BuildPrompt(url string) string {
	return strings.Replace(analysisPrompt, urlPlaceholder, url, 1)
}
