package workflow

import (
	"fmt"

	"github.com/shaiso/railbot/internal/browser"
)

// Таблицы локаторов шагов. Порядок задаёт приоритет: вёрстка целевого
// сайта меняется, первый сработавший локатор выигрывает.

// Логин.
var (
	loginButtonLocators = []browser.Locator{
		browser.Sel(".h_head1 > .search_btn"),
		browser.Sel(".search_btn"),
		browser.SelText("button", "LOGIN"),
		browser.Sel(".loginText"),
		browser.Sel("[class*='login']"),
		browser.Sel("[id*='login']"),
	}

	usernameLocators = []browser.Locator{
		browser.Sel("input[placeholder='User Name']"),
		browser.Sel("input[placeholder*='User']"),
		browser.Sel("input[placeholder*='Username']"),
		browser.Sel("input[name*='user']"),
		browser.Sel("input[id*='user']"),
		browser.Sel("input[type='text']"),
	}

	passwordLocators = []browser.Locator{
		browser.Sel("input[placeholder='Password']"),
		browser.Sel("input[placeholder*='Password']"),
		browser.Sel("input[type='password']"),
		browser.Sel("input[name*='pass']"),
		browser.Sel("input[id*='pass']"),
	}

	loginSubmitLocators = []browser.Locator{
		browser.Sel(".search_btn.loginText"),
		browser.Sel("button[type='submit']"),
		browser.SelText("button", "LOGIN"),
		browser.SelText("button", "Login"),
		browser.Sel(".loginText"),
	}

	// Поля ввода пароля для отправки формы клавишей Enter.
	passwordSubmitLocators = []browser.Locator{
		browser.Sel("input[type='password']"),
	}

	// Селекторы-признаки выполненного логина.
	loggedInProbes = []string{
		"[class*='logout']",
		"[id*='logout']",
		"[class*='user-menu']",
		"[id*='user-menu']",
		".user-name",
		"[class*='profile']",
	}

	// Селекторы сообщений об ошибке логина.
	loginErrorProbes = []string{
		".error",
		"[class*='error']",
		"[class*='alert']",
		"[id*='error']",
		"[role='alert']",
	}

	// Кнопки подтверждения модальных окон.
	alertButtonLocators = []browser.Locator{
		browser.SelText("button", "OK"),
		browser.SelText("button", "Ok"),
		browser.Sel(".ui-dialog-footer button"),
		browser.Sel(".modal-footer button"),
		browser.Sel("[role='dialog'] button"),
	}
)

// Поиск поезда.
var (
	sourceLocators = []browser.Locator{
		browser.Sel("input[placeholder*='From']"),
		browser.Sel("input[id*='source']"),
		browser.Sel("input[name*='source']"),
		browser.Sel(".ui-autocomplete input:first-of-type"),
	}

	destinationLocators = []browser.Locator{
		browser.Sel("input[placeholder*='To']"),
		browser.Sel("input[id*='dest']"),
		browser.Sel("input[name*='dest']"),
		browser.Sel(".ui-autocomplete input:nth-of-type(2)"),
	}

	suggestionLocators = []browser.Locator{
		browser.Sel("#p-highlighted-option"),
		browser.Sel(".ui-autocomplete-item:first-child"),
		browser.Sel("[role='option']:first-child"),
		browser.Sel(".ui-autocomplete-list-item:first-child"),
	}

	dateInputLocators = []browser.Locator{
		browser.Sel(".ui-calendar input"),
		browser.Sel("input[placeholder*='Date']"),
		browser.Sel("[id*='journeyDate'] input"),
	}

	calendarDayLocators = func(day string) []browser.Locator {
		return []browser.Locator{
			browser.SelText(".ui-datepicker-calendar td a", day),
			browser.SelText(".p-datepicker-calendar td span", day),
		}
	}

	quotaDropdownLocators = []browser.Locator{
		browser.Sel("#journeyQuota > .ui-dropdown"),
		browser.Sel("[id*='quota']"),
		browser.Sel("[class*='quota']"),
	}

	tatkalOptionLocators = []browser.Locator{
		browser.SelText(".ui-dropdown-item", "Tatkal"),
		browser.SelText("[role='option']", "Tatkal"),
		browser.SelText("li", "Tatkal"),
	}

	premiumTatkalOptionLocators = []browser.Locator{
		browser.SelText(".ui-dropdown-item", "Premium Tatkal"),
		browser.SelText("[role='option']", "Premium Tatkal"),
		browser.SelText("li", "Premium Tatkal"),
	}

	searchButtonLocators = []browser.Locator{
		browser.Sel(".col-md-3 > .search_btn"),
		browser.Sel(".search_btn"),
		browser.SelText("button", "Search"),
		browser.SelText("button", "SEARCH"),
		browser.Sel("[id*='search']"),
	}
)

// Окно квоты: признаки доступности мест.
var quotaOpenProbes = []string{
	"[class*='AVAILABLE']",
	".AVAILABLE",
	"[class*='avl-note']",
}

// Выбор поезда.
func trainRowLocators(trainNo, coach string) []browser.Locator {
	locators := []browser.Locator{
		browser.SelText(".bull-back", trainNo),
		browser.SelText("[class*='train']", trainNo),
		browser.SelText("tr", trainNo),
	}
	if coach != "" {
		locators = append([]browser.Locator{
			browser.SelText(".bull-back", trainNo+" "+coach),
		}, locators...)
	}
	return locators
}

var bookButtonLocators = []browser.Locator{
	browser.SelText("button", "Book"),
	browser.SelText("button", "BOOK"),
	browser.Sel(".book-btn"),
	browser.Sel("[class*='book']"),
	browser.SelText("a", "Book"),
}

// Пассажиры. Локаторы строятся по номеру пассажира: форма добавляет
// однотипные блоки полей.
var addPassengerLocators = []browser.Locator{
	browser.SelText("a", "Add Passenger"),
	browser.SelText("a", "Add"),
	browser.SelText("button", "Add Passenger"),
	browser.Sel("[class*='add'][class*='passenger']"),
}

func passengerNameLocators(n int) []browser.Locator {
	return []browser.Locator{
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) .ui-autocomplete input", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) input[placeholder*='Name']", n)),
		browser.Sel(fmt.Sprintf(":nth-child(%d) > * input[formcontrolname*='name']", n)),
	}
}

func passengerAgeLocators(n int) []browser.Locator {
	return []browser.Locator{
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) input[formcontrolname='passengerAge']", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) input[placeholder*='Age']", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) input[type='number']", n)),
	}
}

func passengerGenderLocators(n int) []browser.Locator {
	return []browser.Locator{
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[formcontrolname='passengerGender']", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[id*='gender']", n)),
	}
}

func passengerBerthLocators(n int) []browser.Locator {
	return []browser.Locator{
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[formcontrolname='passengerBerthChoice']", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[id*='berth']", n)),
	}
}

func passengerFoodLocators(n int) []browser.Locator {
	return []browser.Locator{
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[formcontrolname='passengerFoodChoice']", n)),
		browser.Sel(fmt.Sprintf("app-passenger:nth-of-type(%d) select[id*='food']", n)),
	}
}

// Посадочная станция и продолжение.
var boardingDropdownLocators = []browser.Locator{
	browser.Sel("[id*='boarding']"),
	browser.Sel("[class*='boarding']"),
	browser.Sel(".ui-dropdown.ui-widget.ui-corner-all"),
}

func boardingOptionLocators(station string) []browser.Locator {
	return []browser.Locator{
		browser.SelText("li.ui-dropdown-item", station),
		browser.SelText("[role='option']", station),
		browser.SelText("li", station),
	}
}

var paymentRadioLocators = []browser.Locator{
	browser.Sel(".ui-radiobutton > .ui-radiobutton-box"),
	browser.Sel("input[value*='UPI']"),
	browser.Sel("[class*='payment'][class*='upi']"),
}

var proceedLocators = []browser.Locator{
	browser.Sel(".train_Search"),
	browser.SelText("button", "Proceed"),
	browser.SelText("button", "PROCEED"),
	browser.Sel("[class*='proceed']"),
	browser.Sel("[id*='proceed']"),
}

// Оплата.
var (
	// Признак captcha на странице оплаты.
	paymentCaptchaProbes = []string{
		".captcha-img",
		"[class*='captcha']",
		"[id*='captcha']",
	}

	upiSectionLocators = []browser.Locator{
		browser.SelText("button", "UPI"),
		browser.Sel("[class*='upi']"),
		browser.Sel("[id*='upi']"),
	}

	bankTypeLocators = []browser.Locator{
		browser.Sel("#bank-type"),
		browser.Sel("[id*='bank-type']"),
	}

	upiBankOptionLocators = []browser.Locator{
		browser.SelText("div", "UPI"),
		browser.SelText("[role='option']", "UPI"),
	}

	upiInputLocators = []browser.Locator{
		browser.Sel("#ptm-upi"),
		browser.Sel("input[placeholder*='UPI']"),
		browser.Sel("input[id*='upi']"),
	}

	payButtonLocators = []browser.Locator{
		browser.SelText("button", "Pay"),
		browser.SelText("button", "PAY"),
		browser.SelText("button", "Submit"),
		browser.Sel("[class*='btn'][class*='pay']"),
		browser.Sel("[id*='submit']"),
	}
)
