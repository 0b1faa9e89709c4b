package ui

// Home renders the landing view: the overview banner plus navigation
// help.
func (a *App) Home() {
	t := a.Theme
	a.println()
	a.println(t.Title.Render("Bank of Palestine Chatbot"))
	a.println(t.Subtle.Render("Your 24/7 virtual assistant for all banking needs."))
	a.println()
	a.println("Get instant support on:")
	a.println("  - Account balances and recent transactions")
	a.println("  - Branch and ATM locations")
	a.println("  - Loan and service inquiries")
	a.println()
	a.println(t.Subtitle.Render("Commands"))
	a.println("  bopchat login               log in to your account")
	a.println("  bopchat signup              create an account")
	a.println("  bopchat chat [session-id]   open the chat")
	a.println("  bopchat reviews [branch]    browse branch reviews")
	a.println("  bopchat profile [term]      browse the bank profile")
	a.println("  bopchat logout              forget the saved session")
	a.println()
}

// NotFound is the fallback view for unmatched commands.
func (a *App) NotFound(command string) {
	a.println()
	a.println(a.Theme.Error.Render("404 - page not found"))
	a.printf("No view matches %q.\n\n", command)
	a.Home()
}
